package capability

// Importance ranks how much a missing skill matters for the target role.
type Importance string

const (
	ImportanceCritical   Importance = "critical"
	ImportanceImportant  Importance = "important"
	ImportanceNiceToHave Importance = "nice-to-have"
)

// ExperienceLevel is the seniority a job posting asks for.
type ExperienceLevel string

const (
	LevelJunior ExperienceLevel = "Junior"
	LevelMid    ExperienceLevel = "Mid"
	LevelSenior ExperienceLevel = "Senior"
	LevelLead   ExperienceLevel = "Lead"
)

// SkillCategory groups skill gaps.
type SkillCategory string

const (
	CategoryTechnical     SkillCategory = "technical"
	CategorySoft          SkillCategory = "soft"
	CategoryCertification SkillCategory = "certification"
	CategoryDomain        SkillCategory = "domain"
)

// SkillLevel is the proficiency a candidate currently has.
type SkillLevel string

const (
	SkillNone         SkillLevel = "none"
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
	SkillExpert       SkillLevel = "expert"
)

// Effort estimates how much work closing the gaps for a posting takes.
type Effort string

const (
	EffortLow    Effort = "low"
	EffortMedium Effort = "medium"
	EffortHigh   Effort = "high"
)

// QuestionType classifies interview questions.
type QuestionType string

const (
	QuestionTechnical   QuestionType = "technical"
	QuestionBehavioral  QuestionType = "behavioral"
	QuestionSituational QuestionType = "situational"
	QuestionCompetency  QuestionType = "competency"
)

// Label returns the human readable name of a question type.
func (q QuestionType) Label() string {
	switch q {
	case QuestionTechnical:
		return "Technical Questions"
	case QuestionBehavioral:
		return "Behavioral Questions"
	case QuestionSituational:
		return "Situational Questions"
	case QuestionCompetency:
		return "Competency Questions"
	default:
		return string(q)
	}
}

// Difficulty of an interview question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Proficiency of a spoken language on a LinkedIn profile.
type Proficiency string

const (
	ProficiencyElementary   Proficiency = "elementary"
	ProficiencyLimited      Proficiency = "limited"
	ProficiencyProfessional Proficiency = "professional"
	ProficiencyFull         Proficiency = "full"
	ProficiencyNative       Proficiency = "native"
)

// Tone requested for a cover letter.
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneEnthusiastic Tone = "enthusiastic"
	ToneFormal       Tone = "formal"
)

// Valid reports whether t is one of the supported tones.
func (t Tone) Valid() bool {
	switch t {
	case ToneProfessional, ToneEnthusiastic, ToneFormal:
		return true
	}
	return false
}

// MergePriority decides which source wins when the CV and LinkedIn profile disagree.
type MergePriority string

const (
	PriorityCV       MergePriority = "cv"
	PriorityLinkedIn MergePriority = "linkedin"
	PriorityBalanced MergePriority = "balanced"
)

// Valid reports whether p is one of the supported priorities.
func (p MergePriority) Valid() bool {
	switch p {
	case PriorityCV, PriorityLinkedIn, PriorityBalanced:
		return true
	}
	return false
}

// Optimization is the output of OptimizeCV.
type Optimization struct {
	OptimizedCV     string        `json:"optimizedCV"`
	TargetRole      string        `json:"targetRole"`
	Improvements    []string      `json:"improvements"`
	RoleAdaptations []string      `json:"roleAdaptations"`
	Keywords        KeywordReport `json:"keywords"`
	ATSScore        ATSScore      `json:"atsScore"`
	SkillGaps       []SkillGapTip `json:"skillGaps"`
}

// KeywordReport lists job keywords by how the optimized CV covers them.
type KeywordReport struct {
	Matched []string `json:"matched"`
	Added   []string `json:"added"`
	Missing []string `json:"missing"`
}

// ATSScore is the applicant tracking system fit before and after optimization.
type ATSScore struct {
	Before float64 `json:"before"`
	After  float64 `json:"after"`
}

// SkillGapTip is a short skill gap note attached to an optimization.
type SkillGapTip struct {
	Skill      string     `json:"skill"`
	Importance Importance `json:"importance"`
	Suggestion string     `json:"suggestion"`
}

// JobAnalysis is the output of AnalyzeJob.
type JobAnalysis struct {
	Title            string          `json:"title"`
	Company          string          `json:"company,omitempty"`
	Industry         string          `json:"industry"`
	ExperienceLevel  ExperienceLevel `json:"experienceLevel"`
	RequiredSkills   []string        `json:"requiredSkills"`
	PreferredSkills  []string        `json:"preferredSkills"`
	Keywords         []string        `json:"keywords"`
	Responsibilities []string        `json:"responsibilities"`
	Benefits         []string        `json:"benefits,omitempty"`
	RedFlags         []string        `json:"redFlags,omitempty"`
	ApplicationTips  []string        `json:"applicationTips"`
}

// CoverLetter is the output of GenerateCoverLetter.
type CoverLetter struct {
	CoverLetter  string   `json:"coverLetter"`
	Highlights   []string `json:"highlights"`
	CallToAction string   `json:"callToAction"`
}

// SkillGapAnalysis is the output of SkillGap.
type SkillGapAnalysis struct {
	Gaps             []Gap    `json:"gaps"`
	OverallReadiness float64  `json:"overallReadiness"`
	StrongPoints     []string `json:"strongPoints"`
	Recommendations  []string `json:"recommendations"`
}

// Gap is one missing or under-developed skill.
type Gap struct {
	Skill         string        `json:"skill"`
	Category      SkillCategory `json:"category"`
	Importance    Importance    `json:"importance"`
	CurrentLevel  SkillLevel    `json:"currentLevel"`
	RequiredLevel SkillLevel    `json:"requiredLevel"`
	LearningPath  LearningPath  `json:"learningPath"`
	Workaround    string        `json:"workaround,omitempty"`
}

// LearningPath suggests how to close a gap.
type LearningPath struct {
	Resources      []string `json:"resources"`
	Courses        []string `json:"courses"`
	Certifications []string `json:"certifications"`
	EstimatedTime  string   `json:"estimatedTime"`
}

// JobComparison is the output of CompareJobs.
type JobComparison struct {
	Comparisons     []JobFit `json:"comparisons"`
	BestMatch       string   `json:"bestMatch"`
	OverallStrategy string   `json:"overallStrategy"`
}

// JobFit scores the CV against one posting.
type JobFit struct {
	JobID          string   `json:"jobId"`
	Title          string   `json:"title"`
	Company        string   `json:"company,omitempty"`
	MatchScore     float64  `json:"matchScore"`
	Strengths      []string `json:"strengths"`
	Gaps           []string `json:"gaps"`
	Effort         Effort   `json:"effort"`
	Recommendation string   `json:"recommendation"`
}

// InterviewQuestions is the output of GenerateInterviewQuestions.
type InterviewQuestions struct {
	Questions  []InterviewQuestion `json:"questions"`
	TargetRole string              `json:"targetRole"`
}

// InterviewQuestion is a single generated question.
type InterviewQuestion struct {
	QuestionNumber int          `json:"questionNumber"`
	QuestionType   QuestionType `json:"questionType"`
	Question       string       `json:"question"`
	ExpectedTopics []string     `json:"expectedTopics"`
	Difficulty     Difficulty   `json:"difficulty"`
}

// AnswerEvaluation is the output of EvaluateInterviewAnswer.
type AnswerEvaluation struct {
	Score        float64  `json:"score"`
	Feedback     string   `json:"feedback"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
	SampleAnswer string   `json:"sampleAnswer"`
}

// LinkedInProfile is the output of ParseLinkedInProfile and the input shape for MergeProfiles.
type LinkedInProfile struct {
	FullName          string          `json:"fullName"`
	Headline          string          `json:"headline,omitempty"`
	Location          string          `json:"location,omitempty"`
	Summary           string          `json:"summary,omitempty"`
	Experience        []Position      `json:"experience"`
	Education         []School        `json:"education"`
	Skills            []string        `json:"skills"`
	Certifications    []Certification `json:"certifications,omitempty"`
	Languages         []Language      `json:"languages,omitempty"`
	ExtractedSections []string        `json:"extractedSections"`
}

// Position is one experience entry on a LinkedIn profile.
type Position struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location,omitempty"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate,omitempty"`
	Current     bool   `json:"current"`
	Description string `json:"description,omitempty"`
}

// School is one education entry on a LinkedIn profile.
type School struct {
	School      string `json:"school"`
	Degree      string `json:"degree,omitempty"`
	Field       string `json:"field,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
	Description string `json:"description,omitempty"`
}

// Certification on a LinkedIn profile.
type Certification struct {
	Name         string `json:"name"`
	Issuer       string `json:"issuer"`
	IssueDate    string `json:"issueDate,omitempty"`
	ExpiryDate   string `json:"expiryDate,omitempty"`
	CredentialID string `json:"credentialId,omitempty"`
}

// Language spoken, with proficiency.
type Language struct {
	Language    string      `json:"language"`
	Proficiency Proficiency `json:"proficiency"`
}

// ProfileMerge is the output of MergeProfiles.
type ProfileMerge struct {
	MergedCV          string     `json:"mergedCV"`
	AddedFromLinkedIn []string   `json:"addedFromLinkedIn"`
	EnhancedSections  []string   `json:"enhancedSections"`
	Conflicts         []Conflict `json:"conflicts"`
}

// Conflict records a disagreement between the CV and the LinkedIn profile.
type Conflict struct {
	Section       string `json:"section"`
	CVValue       string `json:"cvValue"`
	LinkedInValue string `json:"linkedInValue"`
	Resolution    string `json:"resolution"`
}
