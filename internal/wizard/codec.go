package wizard

import (
	"encoding/json"
	"time"
)

// SchemaVersion tags the persisted blob. Any mismatch (older or newer) is
// surfaced to the user instead of being migrated silently.
const SchemaVersion = 1

// DefaultHistoryLimit bounds the persisted conversation history.
const DefaultHistoryLimit = 10

// MaxPersistedBytes is the hard ceiling on the serialized state blob.
const MaxPersistedBytes = 500 * 1024

// PersistedWizardState is the serializable projection of WizardState. The
// blob on disk is always a full overwrite of this shape.
type PersistedWizardState struct {
	SchemaVersion int   `json:"schemaVersion"`
	SavedAt       int64 `json:"savedAt"`

	BusinessObjective string                `json:"businessObjective"`
	Industry          string                `json:"industry"`
	SelectedSystems   []string              `json:"selectedSystems"`
	UploadedFileMeta  *UploadedFileMetadata `json:"uploadedFileMetadata,omitempty"`

	GapFilling   GapFillingState `json:"aiGapFillingState"`
	Outcome      Outcome         `json:"outcome"`
	Security     Security        `json:"security"`
	AgentDesign  AgentDesign     `json:"agentDesign"`
	MockData     MockData        `json:"mockData"`
	DemoStrategy DemoStrategy    `json:"demoStrategy"`

	CurrentStep         int  `json:"currentStep"`
	HighestStepReached  int  `json:"highestStepReached"`
	ValidationAttempted bool `json:"validationAttempted"`
}

// ToPersisted projects the in-memory state into its persisted form: stamps
// the schema version and save time, truncates conversation history, and
// replaces any binary upload with metadata that forces re-upload.
func ToPersisted(s *WizardState, historyLimit int) PersistedWizardState {
	p := PersistedWizardState{
		SchemaVersion:       SchemaVersion,
		SavedAt:             time.Now().UnixMilli(),
		BusinessObjective:   s.BusinessObjective,
		Industry:            s.Industry,
		SelectedSystems:     s.SelectedSystems,
		GapFilling:          s.GapFilling,
		Outcome:             s.Outcome,
		Security:            s.Security,
		AgentDesign:         s.AgentDesign,
		MockData:            s.MockData,
		DemoStrategy:        s.DemoStrategy,
		CurrentStep:         s.CurrentStep,
		HighestStepReached:  s.HighestStepReached,
		ValidationAttempted: s.ValidationAttempted,
	}

	p.GapFilling.ConversationHistory = TruncateHistory(s.GapFilling.ConversationHistory, historyLimit)

	switch {
	case s.UploadedFile != nil:
		p.UploadedFileMeta = &UploadedFileMetadata{
			FileName:         s.UploadedFile.FileName,
			FileSize:         int64(len(s.UploadedFile.Data)),
			UploadedAt:       s.UploadedFile.UploadedAt,
			RequiresReupload: true,
		}
	case s.UploadedFileMeta != nil:
		// Keep existing metadata when only the binary was dropped earlier.
		meta := *s.UploadedFileMeta
		meta.RequiresReupload = true
		p.UploadedFileMeta = &meta
	}

	return p
}

// ToWizardState is the inverse of ToPersisted. The binary upload is always
// absent afterwards; metadata carries RequiresReupload so the UI re-prompts.
func ToWizardState(p PersistedWizardState) *WizardState {
	s := &WizardState{
		BusinessObjective:   p.BusinessObjective,
		Industry:            p.Industry,
		SelectedSystems:     p.SelectedSystems,
		GapFilling:          p.GapFilling,
		Outcome:             p.Outcome,
		Security:            p.Security,
		AgentDesign:         p.AgentDesign,
		MockData:            p.MockData,
		DemoStrategy:        p.DemoStrategy,
		CurrentStep:         p.CurrentStep,
		HighestStepReached:  p.HighestStepReached,
		ValidationAttempted: p.ValidationAttempted,
	}
	if p.UploadedFileMeta != nil {
		meta := *p.UploadedFileMeta
		meta.RequiresReupload = true
		s.UploadedFileMeta = &meta
	}
	if s.CurrentStep == 0 {
		s.CurrentStep = StepBusinessContext
	}
	if s.HighestStepReached < s.CurrentStep {
		s.HighestStepReached = s.CurrentStep
	}
	return s
}

// TruncateHistory keeps the most recent limit messages in original order.
// The input slice is returned untouched when it already fits. A limit of
// zero (or below) clears the history entirely, so the size-bounding path
// can always reach an empty history.
func TruncateHistory(messages []Message, limit int) []Message {
	if limit <= 0 {
		return []Message{}
	}
	if len(messages) <= limit {
		return messages
	}
	return messages[len(messages)-limit:]
}

// EstimateSize returns the serialized byte length of the persisted state.
func EstimateSize(p PersistedWizardState) (int, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return 0, err
	}
	return len(data), nil
}
