// Package wizard defines the ideation wizard state model and the pure
// transformations between its in-memory and persisted forms.
package wizard

// Step indices. The wizard is linear; steps may be revisited but
// HighestStepReached never decreases except on explicit reset.
const (
	StepBusinessContext = 1
	StepGapFilling      = 2
	StepOutcome         = 3
	StepSecurity        = 4
	StepAgentDesign     = 5
	StepMockData        = 6
	StepDemoStrategy    = 7
	StepGenerate        = 8

	StepCount = 8
)

// MessageRole identifies the author of a conversation message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is one turn of an AI conversation held in wizard state.
type Message struct {
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp int64       `json:"timestamp"`
}

// AssumptionSource records whether an assumption came from the AI or was
// corrected by the user.
type AssumptionSource string

const (
	SourceAIProposed    AssumptionSource = "ai-proposed"
	SourceUserCorrected AssumptionSource = "user-corrected"
)

// SystemAssumption is one confirmed assumption about an enterprise system.
type SystemAssumption struct {
	System       string           `json:"system"`
	Modules      []string         `json:"modules"`
	Integrations []string         `json:"integrations"`
	Source       AssumptionSource `json:"source"`
}

// GapFillingState holds the step-2 AI conversation and its confirmed output.
type GapFillingState struct {
	ConversationHistory []Message          `json:"conversationHistory"`
	Assumptions         []SystemAssumption `json:"assumptions"`
}

// KPIMetric is a measurable target attached to the primary outcome.
type KPIMetric struct {
	Name        string `json:"name"`
	TargetValue string `json:"targetValue"`
	Unit        string `json:"unit"`
}

// OverrideMask records which fields of a section the user edited by hand.
// Once a field is masked, automated refinement must not overwrite it; only an
// explicit user action clears the mask.
type OverrideMask map[string]bool

// Edited reports whether the named field is user-owned.
func (m OverrideMask) Edited(field string) bool {
	return m != nil && m[field]
}

// Resolve picks incoming unless the mask marks the field as user-edited.
func Resolve[T any](mask OverrideMask, field string, current, incoming T) T {
	if mask.Edited(field) {
		return current
	}
	return incoming
}

// Outcome is the step-3 section: the business outcome the workflow targets.
type Outcome struct {
	Statement    string       `json:"statement"`
	KPIs         []KPIMetric  `json:"kpis"`
	Stakeholders []string     `json:"stakeholders"`
	Overrides    OverrideMask `json:"overrides,omitempty"`
}

// DataSensitivity classifies the workflow's data handling level.
type DataSensitivity string

const (
	SensitivityPublic       DataSensitivity = "public"
	SensitivityInternal     DataSensitivity = "internal"
	SensitivityConfidential DataSensitivity = "confidential"
	SensitivityRestricted   DataSensitivity = "restricted"
)

// Security is the step-4 section. Skipped means the user explicitly bypassed
// the step, which suppresses cedar-policy generation.
type Security struct {
	DataSensitivity DataSensitivity `json:"dataSensitivity"`
	Frameworks      []string        `json:"frameworks"`
	ApprovalGates   []string        `json:"approvalGates"`
	GuardrailNotes  string          `json:"guardrailNotes"`
	Skipped         bool            `json:"skipped"`
}

// OrchestrationPattern is the coordination topology for the agents.
type OrchestrationPattern string

const (
	PatternGraph    OrchestrationPattern = "graph"
	PatternSwarm    OrchestrationPattern = "swarm"
	PatternWorkflow OrchestrationPattern = "workflow"
)

// Agent is one agent in the designed workflow.
type Agent struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Role  string   `json:"role"`
	Tools []string `json:"tools"`
}

// Edge is a directed connection between two agents.
type Edge struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Condition string `json:"condition,omitempty"`
}

// AgentDesign is the step-5 section with proposed vs. confirmed topology.
type AgentDesign struct {
	ProposedAgents   []Agent              `json:"proposedAgents"`
	ConfirmedAgents  []Agent              `json:"confirmedAgents"`
	ProposedPattern  OrchestrationPattern `json:"proposedPattern"`
	ConfirmedPattern OrchestrationPattern `json:"confirmedPattern"`
	ProposedEdges    []Edge               `json:"proposedEdges"`
	ConfirmedEdges   []Edge               `json:"confirmedEdges"`
	Overrides        OverrideMask         `json:"overrides,omitempty"`
}

// ToolMock is a mock definition for one tool call against one system.
type ToolMock struct {
	Tool         string       `json:"tool"`
	System       string       `json:"system"`
	Operation    string       `json:"operation"`
	Description  string       `json:"description"`
	MockRequest  string       `json:"mockRequest"`
	MockResponse string       `json:"mockResponse"`
	SampleData   []string     `json:"sampleData"`
	Overrides    OverrideMask `json:"overrides,omitempty"`
	Expanded     bool         `json:"expanded"`
}

// MockData is the step-6 section.
type MockData struct {
	Mocks []ToolMock `json:"mocks"`
}

// TriggerType says what kind of event an aha moment is tied to.
type TriggerType string

const (
	TriggerAgent TriggerType = "agent"
	TriggerTool  TriggerType = "tool"
)

// AhaMoment is a scripted demo beat.
type AhaMoment struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	TriggerType  TriggerType `json:"triggerType"`
	TriggerName  string      `json:"triggerName"`
	TalkingPoint string      `json:"talkingPoint"`
}

// Persona is the demo's single point-of-view user.
type Persona struct {
	Name      string `json:"name"`
	Role      string `json:"role"`
	PainPoint string `json:"painPoint"`
}

// Scene is one ordered beat of the demo narrative.
type Scene struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	HighlightedAgents []string `json:"highlightedAgents"`
}

// DemoStrategy is the step-7 section.
type DemoStrategy struct {
	AhaMoments []AhaMoment `json:"ahaMoments"`
	Persona    *Persona    `json:"persona,omitempty"`
	Scenes     []Scene     `json:"scenes"`
}

// UploadedFile is an in-memory reference to a user-provided context document.
// The binary payload is never persisted.
type UploadedFile struct {
	FileName   string
	Data       []byte
	UploadedAt int64
}

// UploadedFileMetadata is the persisted stand-in for an upload.
type UploadedFileMetadata struct {
	FileName         string `json:"fileName"`
	FileSize         int64  `json:"fileSize"`
	UploadedAt       int64  `json:"uploadedAt"`
	RequiresReupload bool   `json:"requiresReupload"`
}

// GenerationProgress is transient per-session UI state; it is rebuilt each
// session and never persisted as authoritative.
type GenerationProgress struct {
	InProgress  bool
	CurrentFile string
	Completed   []string
	Failed      []string
}

// WizardState is the root aggregate: one instance per session, owned by the
// wizard controller and mutated only by its handlers.
type WizardState struct {
	BusinessObjective string
	Industry          string
	SelectedSystems   []string
	UploadedFile      *UploadedFile
	UploadedFileMeta  *UploadedFileMetadata

	GapFilling   GapFillingState
	Outcome      Outcome
	Security     Security
	AgentDesign  AgentDesign
	MockData     MockData
	DemoStrategy DemoStrategy

	Generation GenerationProgress

	CurrentStep         int
	HighestStepReached  int
	ValidationAttempted bool
}

// NewWizardState returns a fresh state positioned at step 1.
func NewWizardState() *WizardState {
	return &WizardState{
		CurrentStep:        StepBusinessContext,
		HighestStepReached: StepBusinessContext,
	}
}

// AdvanceTo moves the wizard to the given step, keeping HighestStepReached
// monotonically non-decreasing.
func (s *WizardState) AdvanceTo(step int) {
	if step < StepBusinessContext || step > StepCount {
		return
	}
	s.CurrentStep = step
	if step > s.HighestStepReached {
		s.HighestStepReached = step
	}
}

// EffectiveAgents returns the confirmed agent list, falling back to the
// proposal when the user has not confirmed yet.
func (d AgentDesign) EffectiveAgents() []Agent {
	if len(d.ConfirmedAgents) > 0 {
		return d.ConfirmedAgents
	}
	return d.ProposedAgents
}

// EffectivePattern returns the confirmed pattern, else the proposal.
func (d AgentDesign) EffectivePattern() OrchestrationPattern {
	if d.ConfirmedPattern != "" {
		return d.ConfirmedPattern
	}
	return d.ProposedPattern
}

// EffectiveEdges returns the confirmed edges, else the proposal.
func (d AgentDesign) EffectiveEdges() []Edge {
	if len(d.ConfirmedEdges) > 0 {
		return d.ConfirmedEdges
	}
	return d.ProposedEdges
}
