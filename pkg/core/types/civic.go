package types

import "time"

// Role identifies who produced a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn is one contiguous span of speech or text attributed to a
// single role. While a turn is open (mid-stream) its Content is appended to;
// once the turn closes it is never mutated again. IDs are unique within a
// session and immutable once assigned.
type ConversationTurn struct {
	ID          string       `json:"id"`
	Role        Role         `json:"role"`
	Content     string       `json:"content"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment is an inline image carried alongside a turn.
type Attachment struct {
	MIMEType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

// CitationSource distinguishes web grounding from map grounding.
type CitationSource string

const (
	CitationWeb  CitationSource = "web"
	CitationMaps CitationSource = "maps"
)

// Citation is a grounding reference returned alongside a generated answer.
type Citation struct {
	Title  string         `json:"title"`
	URI    string         `json:"uri"`
	Source CitationSource `json:"source"`
}

// FormField is a single extracted form field.
type FormField struct {
	Name    string `json:"name"`
	Value   string `json:"value"`
	Section string `json:"section,omitempty"`
}

// FormFillState is derived from a one-shot image analysis and then patched
// field-by-field as inline update tags are discovered in streamed text.
type FormFillState struct {
	Title     string      `json:"title"`
	Fields    []FormField `json:"fields"`
	Collapsed bool        `json:"collapsed"`
}

// FormAnalysis is the schema-constrained result of analyzing a form photo.
type FormAnalysis struct {
	FormType       string   `json:"formType"`
	RequiredFields []string `json:"requiredFields"`
	SuggestedDocs  []string `json:"suggestedDocs"`
}

// Severity is the enumerated urgency of a reported civic problem.
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

// ProblemReport is the schema-constrained result of classifying a civic
// problem photo.
type ProblemReport struct {
	Category    string   `json:"category"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	Department  string   `json:"department"`
}

// DocumentStatus tracks whether a vault document has been fetched.
type DocumentStatus string

const (
	StatusFetched    DocumentStatus = "FETCHED"
	StatusNotFetched DocumentStatus = "NOT_FETCHED"
)

// VaultDocument is a mock identity-document record. Fetched data is an
// opaque key/value mapping of simulated government-ID fields.
type VaultDocument struct {
	ID     string            `json:"id"`
	Name   string            `json:"name"`
	Status DocumentStatus    `json:"status"`
	Data   map[string]string `json:"data,omitempty"`
}

// ChatSession is a persisted conversation.
type ChatSession struct {
	ID        string             `json:"id"`
	Title     string             `json:"title"`
	Language  string             `json:"language"`
	Turns     []ConversationTurn `json:"turns"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}
