package chatbuilder

const (
	greeting       = "Hi there! I'm your AI resume assistant. I'll help you create an ATS-friendly resume step by step. Let's start with the basics. What's your full name?"
	askExperience  = "Great! Now, tell me about your most recent work experience. What was your job title, company name, and what were your main responsibilities?"
	askEducation   = "Excellent! Now let's add your education. What's your highest level of education, the institution name, and graduation year?"
	askSkills      = "Great! Now, what are your key skills and technical proficiencies that you'd like to highlight on your resume?"
	completed      = "Perfect! I've gathered all the necessary information. Here's your completed resume based on what you've shared. You can download it as a PDF or make further edits if needed."
	completedSaved = completed + " It has been saved to your resumes."
)
