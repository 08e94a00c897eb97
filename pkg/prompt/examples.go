package prompt

// Examples are sample questions that exercise the model's thinking
var Examples = []string{
	"Describe the interaction between CYP450 enzymes and drug metabolism, with particular emphasis on how enzyme induction or inhibition can affect the therapeutic efficacy of drugs such as warfarin.",
	"Provide a detailed analysis of the pharmacokinetic and pharmacodynamic properties of erythropoietin agents used for the treatment of anemia in patients with chronic kidney disease, and explain the factors that influence dosing and dosing interval decisions.",
	"Extract natural plants for new drug development aimed at treating liver cirrhosis (reversing liver fibrosis), and from the perspective of traditional Korean medicine (Hanbang), reason through their pharmacological mechanisms, the rationale behind them, and how they should be combined for the best effect.",
	"Explain natural plant substances effective in treating Alzheimer's disease, including their pharmacological mechanisms, from the perspective of traditional Korean medicine (Hanbang).",
	"Explain promising natural plant substances and their pharmacological mechanisms for new drugs that treat and relieve the symptoms of hypertension, from the perspective of traditional Korean medicine (Hanbang).",
	"Compare and contrast the mechanisms of action of ACE inhibitors and ARBs in hypertension management, taking into account their effects on the renin-angiotensin-aldosterone system (RAAS).",
	"Describe the pathophysiology of type 2 diabetes and explain how metformin achieves its glucose-lowering effect, including key considerations for patients with renal impairment.",
	"Discuss the mechanism of action and clinical significance of beta-blockers in the treatment of heart failure, referring to the specific beta-receptor subtypes and their effects on the cardiovascular system.",
	"Explain the pathophysiological mechanisms of Alzheimer's disease and the main targets of current drugs, comparing acetylcholinesterase inhibitors and NMDA receptor antagonists.",
	"Explain the FDA-approved treatments for liver cirrhosis and their mechanisms of action.",
	"Tell me about the FDA-approved treatments for hypertension.",
}
