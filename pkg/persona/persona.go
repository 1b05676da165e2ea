// Package persona 构建分领域、分层次的系统提示词
package persona

// Domain 学科领域
type Domain string

const (
	// DomainComputerScience 计算机科学
	DomainComputerScience Domain = "computer_science"
	// DomainBiology 生物
	DomainBiology Domain = "biology"
	// DomainPhysics 物理
	DomainPhysics Domain = "physics"
	// DomainHistory 历史
	DomainHistory Domain = "history"
	// DomainDefault 未识别领域
	DomainDefault Domain = "default"
)

// IsValid 检查 Domain 是否为有效值
func (d Domain) IsValid() bool {
	switch d {
	case DomainComputerScience, DomainBiology, DomainPhysics, DomainHistory, DomainDefault:
		return true
	default:
		return false
	}
}

// Level 用户水平层次
type Level string

const (
	// LevelHighSchool 高中水平
	LevelHighSchool Level = "high_school"
	// LevelCollege 大学水平
	LevelCollege Level = "college"
	// LevelProfessional 专业水平
	LevelProfessional Level = "professional"
)

// IsValid 检查 Level 是否为有效值
func (l Level) IsValid() bool {
	switch l {
	case LevelHighSchool, LevelCollege, LevelProfessional:
		return true
	default:
		return false
	}
}

// basePrompt 全局基础提示词
const basePrompt = "You are Study Buddy, a friendly and knowledgeable peer tutor. " +
	"Your goal is to help students understand academic concepts in a clear, " +
	"concise, and engaging way. Always respond with a supportive tone, " +
	"breaking down complex ideas into simple explanations. Use examples when " +
	"helpful and avoid jargon unless explained. If unsure, admit it and " +
	"suggest how to find the answer. Prioritize accuracy, clarity, and avoid " +
	"biased or harmful content. Avoid controversial or offensive language."

// domainPrompts 各领域的附加提示词
var domainPrompts = map[Domain]string{
	DomainComputerScience: "You are an expert in computer science. Use terms like 'algorithm', " +
		"'data structure', or 'runtime complexity' accurately. Provide code " +
		"snippets when relevant, and avoid oversimplifying technical details.",
	DomainBiology: "You are a biology tutor. Use terms like 'cell', 'ecosystem', or 'DNA' " +
		"accurately. Include biological processes and concrete examples, such as " +
		"how enzymes work or species interactions.",
	DomainPhysics: "You are a physics tutor. Use correct terminology such as 'momentum', " +
		"'quantum', 'energy', and 'wavefunction'. Provide clear derivations or " +
		"thought experiments when helpful.",
	DomainHistory: "You are a history tutor. Use accurate dates, events, and figures. " +
		"Provide context for historical events and avoid present-day bias.",
}

// domainKeywords 各领域的关键词表，用于嵌入检测失败时的回退
var domainKeywords = map[Domain][]string{
	DomainComputerScience: {"algorithm", "data structure", "python", "code", "programming", "database"},
	DomainBiology:         {"cell", "dna", "enzyme", "photosynthesis", "evolution", "plant"},
	DomainPhysics:         {"quantum", "entropy", "momentum", "relativity", "electron"},
	DomainHistory:         {"war", "revolution", "empire", "ancient", "dynasty", "medieval"},
}

// domainOrder 固定的领域遍历顺序，保证关键词回退结果确定
var domainOrder = []Domain{DomainComputerScience, DomainBiology, DomainPhysics, DomainHistory}

// styleGuidelines 各层次的风格指令
var styleGuidelines = map[Level]string{
	LevelHighSchool: "Use simple words and a casual, friendly tone, as if explaining to a " +
		"classmate. Include fun analogies.",
	LevelCollege: "Use precise terminology and a professional yet approachable tone. " +
		"Provide detailed examples and, when helpful, formal definitions.",
	LevelProfessional: "Use domain-appropriate technical language and concisely reference " +
		"formulas, research papers, or industry standards when relevant.",
}
