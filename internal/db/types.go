package db

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/cv-optimizer/internal/capability"
)

// Interview session statuses
const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// LinkedIn profile sources
const (
	SourcePDF    = "pdf"
	SourceManual = "manual"
)

// User is an account that owns history entries.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	PasswordSet  bool      `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// JobPosting is a posting an optimization or cover letter was generated for.
type JobPosting struct {
	ID              uuid.UUID   `json:"id"`
	Title           string      `json:"title"`
	Company         string      `json:"company,omitempty"`
	Description     string      `json:"description"`
	RequiredSkills  StringArray `json:"requiredSkills"`
	PreferredSkills StringArray `json:"preferredSkills"`
	Keywords        StringArray `json:"keywords"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// Optimization is a stored CV optimization. UserID is nil for anonymous requests.
type Optimization struct {
	ID              uuid.UUID   `json:"id"`
	UserID          *uuid.UUID  `json:"userId,omitempty"`
	JobPostingID    *uuid.UUID  `json:"jobPostingId,omitempty"`
	OriginalCV      string      `json:"originalCV"`
	OptimizedCV     string      `json:"optimizedCV"`
	TargetRole      string      `json:"targetRole"`
	ATSScoreBefore  float64     `json:"atsScoreBefore"`
	ATSScoreAfter   float64     `json:"atsScoreAfter"`
	MatchedKeywords StringArray `json:"matchedKeywords"`
	AddedKeywords   StringArray `json:"addedKeywords"`
	MissingSkills   StringArray `json:"missingSkills"`
	Improvements    StringArray `json:"improvements"`
	RoleAdaptations StringArray `json:"roleAdaptations"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// HistoryItem is an optimization as listed in a user's history.
type HistoryItem struct {
	ID              uuid.UUID   `json:"id"`
	TargetRole      string      `json:"targetRole"`
	Company         string      `json:"company,omitempty"`
	ATSScoreBefore  float64     `json:"atsScoreBefore"`
	ATSScoreAfter   float64     `json:"atsScoreAfter"`
	CreatedAt       time.Time   `json:"createdAt"`
	OptimizedCV     string      `json:"optimizedCV"`
	OriginalCV      string      `json:"originalCV"`
	MatchedKeywords StringArray `json:"matchedKeywords"`
	AddedKeywords   StringArray `json:"addedKeywords"`
	MissingSkills   StringArray `json:"missingSkills"`
	Improvements    StringArray `json:"improvements"`
}

// CoverLetter is a stored cover letter.
type CoverLetter struct {
	ID           uuid.UUID  `json:"id"`
	UserID       *uuid.UUID `json:"userId,omitempty"`
	JobPostingID *uuid.UUID `json:"jobPostingId,omitempty"`
	Content      string     `json:"content"`
	Tone         string     `json:"tone"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// SkillGap is one stored gap from a skill gap analysis.
type SkillGap struct {
	ID            uuid.UUID                `json:"id"`
	UserID        *uuid.UUID               `json:"userId,omitempty"`
	MissingSkill  string                   `json:"missingSkill"`
	Category      string                   `json:"category"`
	Importance    string                   `json:"importance"`
	LearningPath  *capability.LearningPath `json:"learningPath,omitempty"`
	EstimatedTime string                   `json:"estimatedTime,omitempty"`
	CreatedAt     time.Time                `json:"createdAt"`
}

// InterviewSession is a mock interview. CurrentQuestion counts answered questions.
type InterviewSession struct {
	ID              uuid.UUID  `json:"id"`
	UserID          *uuid.UUID `json:"-"`
	CVText          string     `json:"-"`
	JobDescription  string     `json:"-"`
	TargetRole      string     `json:"targetRole"`
	TotalQuestions  int        `json:"totalQuestions"`
	CurrentQuestion int        `json:"currentQuestion"`
	Status          string     `json:"status"`
	OverallScore    *float64   `json:"overallScore"`
	CreatedAt       time.Time  `json:"createdAt"`
	CompletedAt     *time.Time `json:"completedAt"`
}

// InterviewQuestion is a generated question and, once answered, its evaluation.
type InterviewQuestion struct {
	ID             uuid.UUID   `json:"id"`
	SessionID      uuid.UUID   `json:"-"`
	QuestionNumber int         `json:"questionNumber"`
	QuestionType   string      `json:"questionType"`
	Question       string      `json:"question"`
	ExpectedTopics StringArray `json:"expectedTopics"`
	Difficulty     string      `json:"difficulty"`
	UserAnswer     *string     `json:"userAnswer"`
	Score          *float64    `json:"score"`
	Feedback       *string     `json:"feedback"`
	Strengths      StringArray `json:"strengths"`
	Improvements   StringArray `json:"improvements"`
	SampleAnswer   *string     `json:"sampleAnswer"`
	AnsweredAt     *time.Time  `json:"answeredAt"`
}

// Answered reports whether the question has an evaluated answer.
func (q *InterviewQuestion) Answered() bool {
	return q.Score != nil
}

// AnswerRecord is the evaluation stored against a question.
type AnswerRecord struct {
	Answer       string
	Score        float64
	Feedback     string
	Strengths    []string
	Improvements []string
	SampleAnswer string
}

// LinkedInProfile is a stored profile, parsed from a PDF export or entered by hand.
type LinkedInProfile struct {
	ID             uuid.UUID                  `json:"id"`
	UserID         *uuid.UUID                 `json:"-"`
	FullName       string                     `json:"fullName"`
	Headline       string                     `json:"headline"`
	Location       string                     `json:"location"`
	Summary        string                     `json:"summary"`
	Experience     []capability.Position      `json:"experience"`
	Education      []capability.School        `json:"education"`
	Skills         StringArray                `json:"skills"`
	Certifications []capability.Certification `json:"certifications"`
	Languages      []capability.Language      `json:"languages"`
	SourceType     string                     `json:"sourceType"`
	CreatedAt      time.Time                  `json:"createdAt"`
}

// FetchedPage is an imported job posting cached by URL.
type FetchedPage struct {
	URL        string
	Title      string
	Text       string
	Platform   string
	StatusCode int
	FetchedAt  time.Time
}

// StringArray handles JSONB string arrays
type StringArray []string

// Scan implements the Scanner interface for StringArray
func (a *StringArray) Scan(src interface{}) error {
	if src == nil {
		*a = []string{}
		return nil
	}
	var source []byte
	switch v := src.(type) {
	case []byte:
		source = v
	case string:
		source = []byte(v)
	default:
		return errors.New("type assertion .([]byte) failed")
	}
	return json.Unmarshal(source, a)
}

// Value implements the Valuer interface for StringArray
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a)
}

// jsonList marshals v for a JSONB column, writing an empty array for nil slices.
func jsonList[T any](v []T) ([]byte, error) {
	if v == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(v)
}
