package assistant

import "strings"

var skillTable = map[string][]string{
	"developer": {
		"JavaScript", "TypeScript", "React", "Node.js", "Python", "Git", "REST APIs",
		"GraphQL", "AWS", "Docker", "CI/CD", "Agile", "Problem Solving",
	},
	"designer": {
		"Figma", "Adobe XD", "Sketch", "UI/UX", "Wireframing", "Prototyping",
		"User Research", "Visual Design", "Typography", "Color Theory", "Accessibility",
	},
	"manager": {
		"Team Leadership", "Project Management", "Agile/Scrum", "Stakeholder Management",
		"Strategic Planning", "Budgeting", "Performance Reviews", "Conflict Resolution",
	},
	"marketing": {
		"SEO", "Content Marketing", "Social Media", "Email Marketing", "Google Analytics",
		"A/B Testing", "Marketing Automation", "CRM", "Copywriting", "Brand Strategy",
	},
	"default": {
		"Communication", "Teamwork", "Problem Solving", "Time Management", "Adaptability",
		"Critical Thinking", "Attention to Detail", "Microsoft Office",
	},
}

// skillCategory picks the fallback table row for a job title.
func skillCategory(jobTitle string) string {
	t := strings.ToLower(jobTitle)
	switch {
	case strings.Contains(t, "develop"), strings.Contains(t, "engineer"), strings.Contains(t, "program"):
		return "developer"
	case strings.Contains(t, "design"):
		return "designer"
	case strings.Contains(t, "manager"), strings.Contains(t, "director"):
		return "manager"
	case strings.Contains(t, "market"):
		return "marketing"
	default:
		return "default"
	}
}

var sampleCategoryScores = map[string]int{
	"content":     85,
	"format":      70,
	"impact":      75,
	"relevance":   80,
	"keywords":    80,
	"ats":         72,
	"readability": 80,
	"grammar":     88,
	"industryFit": 70,
	"careerLevel": 75,
}

func mockStrength(selected []Criterion) Strength {
	scores := make(map[string]int, len(selected))
	for _, c := range selected {
		scores[c.Key] = sampleCategoryScores[c.Key]
	}
	return Strength{
		OverallScore:   78,
		CategoryScores: scores,
		Strengths: []string{
			"Strong technical skills section with relevant technologies",
			"Quantifiable achievements in work experience",
			"Clear progression of career growth",
			"Well-structured education section",
		},
		Weaknesses: []string{
			"Summary could be more targeted to specific roles",
			"Some bullet points lack specific metrics or outcomes",
			"Could use more industry-specific keywords",
			"Experience descriptions could highlight more soft skills",
		},
		Keywords: []string{
			"JavaScript", "React", "Node.js", "Software Engineer", "Full Stack",
			"API", "Optimization", "Development", "Agile",
		},
		Degraded: true,
	}
}

// IndustryProfile is the static outlook for one industry.
type IndustryProfile struct {
	Industry         string   `json:"industry"`
	Relevance        int      `json:"relevance"`
	KeyTrends        []string `json:"keyTrends"`
	InDemandSkills   []string `json:"inDemandSkills"`
	ResumeStrengths  []string `json:"resumeStrengths"`
	ImprovementAreas []string `json:"improvementAreas"`
	SalaryRange      string   `json:"salaryRange"`
	CompetitionLevel string   `json:"competitionLevel"`
}

var industries = map[string]IndustryProfile{
	"tech": {
		Industry:  "Technology",
		Relevance: 85,
		KeyTrends: []string{
			"AI and Machine Learning integration",
			"Remote-first work environments",
			"Microservices architecture",
			"DevOps and CI/CD adoption",
			"Cloud-native development",
		},
		InDemandSkills: []string{
			"React/Next.js",
			"TypeScript",
			"Cloud platforms (AWS/Azure/GCP)",
			"CI/CD pipelines",
			"Containerization (Docker/Kubernetes)",
			"AI/ML frameworks",
		},
		ResumeStrengths: []string{
			"Strong technical skill set",
			"Project-based experience",
			"Collaborative development background",
			"Problem-solving focus",
		},
		ImprovementAreas: []string{
			"Add more quantifiable achievements",
			"Highlight cloud platform experience",
			"Include CI/CD pipeline experience",
			"Mention any AI/ML exposure",
		},
		SalaryRange:      "$90,000 - $150,000",
		CompetitionLevel: "High",
	},
	"finance": {
		Industry:  "Finance",
		Relevance: 70,
		KeyTrends: []string{
			"Fintech integration",
			"Blockchain and cryptocurrency",
			"Automated compliance systems",
			"Data-driven decision making",
			"Digital transformation",
		},
		InDemandSkills: []string{
			"Financial analysis",
			"Regulatory compliance",
			"Data visualization",
			"Python/R for financial modeling",
			"SQL and database management",
			"Risk assessment",
		},
		ResumeStrengths: []string{
			"Analytical approach",
			"Attention to detail",
			"Problem-solving abilities",
			"Technical foundation",
		},
		ImprovementAreas: []string{
			"Highlight any financial domain knowledge",
			"Add financial software experience",
			"Include compliance understanding",
			"Emphasize data analysis capabilities",
		},
		SalaryRange:      "$85,000 - $140,000",
		CompetitionLevel: "Medium",
	},
	"healthcare": {
		Industry:  "Healthcare",
		Relevance: 65,
		KeyTrends: []string{
			"Telehealth expansion",
			"Electronic health records",
			"Healthcare data security",
			"AI in diagnostics",
			"Patient experience platforms",
		},
		InDemandSkills: []string{
			"HIPAA compliance",
			"Healthcare data systems",
			"Security protocols",
			"UI/UX for patient interfaces",
			"Integration with medical devices",
			"Health data analytics",
		},
		ResumeStrengths: []string{
			"Technical foundation applicable to healthcare",
			"Problem-solving approach",
			"Attention to detail",
			"Collaborative work style",
		},
		ImprovementAreas: []string{
			"Add any healthcare domain knowledge",
			"Highlight security and compliance experience",
			"Emphasize user-centered design for patients",
			"Include any relevant certifications",
		},
		SalaryRange:      "$80,000 - $130,000",
		CompetitionLevel: "Medium",
	},
	"ecommerce": {
		Industry:  "E-commerce",
		Relevance: 80,
		KeyTrends: []string{
			"Headless commerce",
			"Personalization engines",
			"Mobile-first shopping experiences",
			"Omnichannel integration",
			"AI-powered recommendations",
		},
		InDemandSkills: []string{
			"Frontend frameworks (React/Vue)",
			"Payment gateway integration",
			"Performance optimization",
			"A/B testing",
			"Analytics implementation",
			"User experience design",
		},
		ResumeStrengths: []string{
			"Frontend development skills",
			"Performance optimization experience",
			"User-focused approach",
			"Technical versatility",
		},
		ImprovementAreas: []string{
			"Highlight e-commerce platform experience",
			"Add conversion optimization examples",
			"Include mobile commerce experience",
			"Mention any payment system integration",
		},
		SalaryRange:      "$85,000 - $140,000",
		CompetitionLevel: "Medium",
	},
	"marketing": {
		Industry:  "Marketing",
		Relevance: 60,
		KeyTrends: []string{
			"Marketing automation",
			"Data-driven campaigns",
			"Content personalization",
			"Interactive experiences",
			"Cross-channel analytics",
		},
		InDemandSkills: []string{
			"Marketing automation tools",
			"Analytics platforms",
			"A/B testing frameworks",
			"CRM integration",
			"Interactive content development",
			"Performance marketing",
		},
		ResumeStrengths: []string{
			"Technical foundation for MarTech",
			"Data-oriented approach",
			"Problem-solving abilities",
			"User experience focus",
		},
		ImprovementAreas: []string{
			"Highlight any marketing technology experience",
			"Add analytics implementation examples",
			"Include campaign optimization experience",
			"Mention any CRM or automation tool knowledge",
		},
		SalaryRange:      "$75,000 - $125,000",
		CompetitionLevel: "Medium",
	},
}

// industryAliases maps display names and common spellings to table keys.
var industryAliases = map[string]string{
	"technology": "tech",
	"software":   "tech",
	"it":         "tech",
	"fintech":    "finance",
	"banking":    "finance",
	"health":     "healthcare",
	"e-commerce": "ecommerce",
	"retail":     "ecommerce",
}

// Industries lists the table keys in a stable order.
func Industries() []string {
	return []string{"tech", "finance", "healthcare", "ecommerce", "marketing"}
}

func lookupIndustry(name string) (string, IndustryProfile, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := industryAliases[key]; ok {
		key = alias
	}
	p, ok := industries[key]
	return key, p, ok
}
