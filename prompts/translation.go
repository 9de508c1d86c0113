package prompts

// DefaultTranslationPrompt asks for an English to Thai translation of a
// Wuxia/Xianxia novel excerpt and fixes the genre glossary.
var DefaultTranslationPrompt = NewPromptTemplate(
	`คุณคือนักแปลมืออาชีพที่มีความเชี่ยวชาญในการแปลนิยาย Wuxia/Xianxia จีนจากภาษาอังกฤษเป็นภาษาไทย

กรุณาแปลเนื้อหาต่อไปนี้จากภาษาอังกฤษเป็นภาษาไทย:

{{.text}}

หลักการแปล:
1. รักษาความหมายและบรรยากาศของนิยาย Wuxia/Xianxia ไว้
2. ใช้ภาษาไทยที่อ่านง่ายและไหลลื่น
3. แปลศัพท์เฉพาะ: Cultivation→การเพาะพิถี, Qi→ชี่, Dantian→ต้านเถียน, Breakthrough→ก้าวกระโดด, Elder→ผู้อาวุโส, Young Master→คุณชายหนุ่ม
4. คงชื่อตัวละครและสถานที่เฉพาะไว้
5. ปรับการใช้ภาษาให้เหมาะสมกับผู้อ่านไทย
6. รักษาบุคลิกและสไตล์การพูดของตัวละครไว้

การแปล:`)
