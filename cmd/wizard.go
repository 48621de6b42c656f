package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/agentify-dev/agentify/internal/conversation"
	"github.com/agentify-dev/agentify/internal/telemetry"
	"github.com/agentify-dev/agentify/internal/ui"
	"github.com/agentify-dev/agentify/internal/wizard"
	"github.com/agentify-dev/agentify/prompts"
	"github.com/agentify-dev/agentify/store"
)

// errExitWizard signals a user-requested exit; progress is already saved.
var errExitWizard = errors.New("wizard exited")

// maxUploadBytes bounds the optional context document kept in memory.
const maxUploadBytes = 5 * 1024 * 1024

var wizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Run the interactive ideation wizard",
	Long: `Walks through the eight wizard steps, from business context to steering
document generation. Progress is saved continuously; rerun the command to
resume where you left off.`,
	RunE: runWizard,
}

func init() {
	rootCmd.AddCommand(wizardCmd)
}

func runWizard(cmd *cobra.Command, args []string) error {
	st := GetStateStore()
	defer func() { _ = st.Close() }()

	state, err := resumeOrFresh(st)
	if err != nil {
		return err
	}
	telemetry.Track(telemetry.NewEvent(telemetry.EventSessionStart))

	ctx := cmd.Context()
	for {
		stepStart := time.Now()
		step := state.CurrentStep

		var stepErr error
		switch step {
		case wizard.StepBusinessContext:
			stepErr = stepBusinessContext(state, st)
		case wizard.StepGapFilling:
			stepErr = stepGapFilling(ctx, state, st)
		case wizard.StepOutcome:
			stepErr = stepOutcome(ctx, state, st)
		case wizard.StepSecurity:
			stepErr = stepSecurity(state, st)
		case wizard.StepAgentDesign:
			stepErr = stepAgentDesign(ctx, state, st)
		case wizard.StepMockData:
			stepErr = stepMockData(ctx, state, st)
		case wizard.StepDemoStrategy:
			stepErr = stepDemoStrategy(ctx, state, st)
		case wizard.StepGenerate:
			stepErr = stepGenerate(ctx, state, st)
		}

		if errors.Is(stepErr, errExitWizard) {
			if err := st.SaveImmediate(state); err != nil {
				LogError("save on exit", err)
			}
			fmt.Println(ui.StyleSubtle.Render("Progress saved. Run 'agentify wizard' to resume."))
			return nil
		}
		if stepErr != nil {
			return stepErr
		}

		if t := telemetry.Get(); t != nil {
			t.TrackStepCompleted(step, time.Since(stepStart).Milliseconds())
		}

		if step == wizard.StepGenerate {
			return nil
		}

		state.AdvanceTo(step + 1)
		if err := st.SaveImmediate(state); err != nil {
			LogError("save at step transition", err)
		}
	}
}

// resumeOrFresh loads a persisted session when one exists and lets the
// user choose between resuming and starting over. Unreadable or
// incompatible state is reported, then a fresh session starts.
func resumeOrFresh(st *store.StateStore) (*wizard.WizardState, error) {
	state, status, err := st.Load()
	if err != nil {
		return nil, err
	}

	switch status {
	case store.StatusLoaded:
		fmt.Printf("%s step %d of %d\n",
			ui.StyleSuccess.Render("Found a saved session at"), state.CurrentStep, wizard.StepCount)
		if state.UploadedFileMeta != nil && state.UploadedFileMeta.RequiresReupload {
			fmt.Println(ui.StyleWarning.Render(
				"Note: the uploaded context document is not stored; re-upload it in step 1 if needed."))
		}
		idx, _, err := selectOption("Resume or start over", []string{"Resume", "Start over"})
		if err != nil {
			return nil, err
		}
		if idx == 0 {
			telemetry.Track(telemetry.NewEvent(telemetry.EventWizardResumed).WithProp("step", state.CurrentStep))
			return state, nil
		}
		if err := st.Clear(); err != nil {
			return nil, err
		}
	case store.StatusCorrupted:
		fmt.Println(ui.StyleWarning.Render("The saved session could not be read; starting fresh."))
	case store.StatusVersionMismatch:
		fmt.Println(ui.StyleWarning.Render(
			"The saved session was written by an incompatible version; starting fresh."))
	}
	return wizard.NewWizardState(), nil
}

func stepBanner(step int, title string) {
	fmt.Println()
	fmt.Println(ui.StyleStepBanner.Render(fmt.Sprintf("Step %d/%d · %s", step, wizard.StepCount, title)))
}

// --- Step 1: business context ---

func stepBusinessContext(state *wizard.WizardState, st *store.StateStore) error {
	stepBanner(wizard.StepBusinessContext, "Business Context")

	objective, err := promptText("What business workflow do you want to automate", state.BusinessObjective, true)
	if err != nil {
		return err
	}
	state.BusinessObjective = objective
	st.Save(state)

	industry, err := promptText("Industry (optional)", state.Industry, false)
	if err != nil {
		return err
	}
	state.Industry = industry
	st.Save(state)

	systems, err := promptList("Enterprise systems involved (empty line to finish)", state.SelectedSystems)
	if err != nil {
		return err
	}
	state.SelectedSystems = systems
	st.Save(state)

	upload, err := confirm("Attach a context document (architecture notes, process docs)")
	if err != nil {
		return err
	}
	if upload {
		if err := attachContextFile(state); err != nil {
			PrintError("Could not read the context document.", err)
		}
		st.Save(state)
	}
	return nil
}

func attachContextFile(state *wizard.WizardState) error {
	path, err := promptText("Path to the document", "", true)
	if err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Size() > maxUploadBytes {
		return fmt.Errorf("document is %d bytes; the limit is %d", info.Size(), maxUploadBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	state.UploadedFile = &wizard.UploadedFile{
		FileName:   info.Name(),
		Data:       data,
		UploadedAt: time.Now().UnixMilli(),
	}
	fmt.Printf("%s %s (%d bytes)\n", ui.StylePrefixDone.Render("Attached"), info.Name(), len(data))
	return nil
}

// --- Step 2: AI gap filling ---

func stepGapFilling(ctx context.Context, state *wizard.WizardState, st *store.StateStore) error {
	stepBanner(wizard.StepGapFilling, "AI Gap Filling")

	if len(state.GapFilling.Assumptions) > 0 {
		keep, err := confirm(fmt.Sprintf("Keep the %d confirmed assumptions from last time", len(state.GapFilling.Assumptions)))
		if err != nil {
			return err
		}
		if keep {
			return nil
		}
		state.GapFilling = wizard.GapFillingState{}
	}

	client, err := newConversation(ctx, prompts.KeyGapFilling)
	if err != nil {
		return aiSetupError(err)
	}

	message := wizard.BuildGapFillingContext(state.BusinessObjective, state.Industry, state.SelectedSystems)
	for {
		response, err := streamAI(ctx, client, state, message)
		if err != nil {
			return aiCallError(err)
		}
		st.Save(state)

		assumptions := wizard.ParseAssumptions(response)
		if assumptions == nil {
			message = "Please restate your proposal strictly in the requested JSON format."
			fmt.Println(ui.StyleWarning.Render("The response had no usable proposal; asking again."))
			continue
		}

		fmt.Println()
		fmt.Println(ui.StyleSectionTitle.Render("Proposed assumptions"))
		for i, a := range assumptions {
			fmt.Printf("  %d. %s — modules: %s; integrations: %s\n",
				i+1, a.System, strings.Join(a.Modules, ", "), strings.Join(a.Integrations, ", "))
		}

		idx, _, err := selectOption("How do these look", []string{"Confirm", "Refine with a follow-up", "Regenerate"})
		if err != nil {
			return err
		}
		switch idx {
		case 0:
			state.GapFilling.Assumptions = assumptions
			st.Save(state)
			return nil
		case 1:
			followUp, err := promptText("Your correction or question", "", true)
			if err != nil {
				return err
			}
			message = followUp
		case 2:
			message = "Propose a different set of assumptions for the same context."
		}
	}
}

// --- Step 3: outcome ---

func stepOutcome(ctx context.Context, state *wizard.WizardState, st *store.StateStore) error {
	stepBanner(wizard.StepOutcome, "Primary Outcome")

	if state.Outcome.Statement == "" || !keepExisting("outcome definition") {
		client, err := newConversation(ctx, prompts.KeyOutcome)
		if err != nil {
			return aiSetupError(err)
		}
		response, err := streamAI(ctx, client, nil, wizard.BuildOutcomeContext(state))
		if err != nil {
			return aiCallError(err)
		}
		if proposed := wizard.ParseOutcome(response); proposed != nil {
			state.Outcome = wizard.MergeOutcome(state.Outcome, *proposed)
			st.Save(state)
		} else {
			fmt.Println(ui.StyleWarning.Render("No usable outcome proposal; fill it in manually."))
		}
	}

	fmt.Printf("\nStatement: %s\n", state.Outcome.Statement)
	for _, kpi := range state.Outcome.KPIs {
		fmt.Printf("  KPI: %s → %s %s\n", kpi.Name, kpi.TargetValue, kpi.Unit)
	}
	edit, err := confirm("Edit the outcome statement")
	if err != nil {
		return err
	}
	if edit {
		statement, err := promptText("Outcome statement", state.Outcome.Statement, true)
		if err != nil {
			return err
		}
		state.Outcome.Statement = statement
		if state.Outcome.Overrides == nil {
			state.Outcome.Overrides = wizard.OverrideMask{}
		}
		state.Outcome.Overrides[wizard.FieldOutcomeStatement] = true
		st.Save(state)
	}
	return nil
}

// --- Step 4: security posture ---

func stepSecurity(state *wizard.WizardState, st *store.StateStore) error {
	stepBanner(wizard.StepSecurity, "Security Posture")

	skip, err := confirm("Skip the security step")
	if err != nil {
		return err
	}
	if skip {
		state.Security = wizard.Security{Skipped: true}
		st.Save(state)
		return nil
	}

	levels := []string{
		string(wizard.SensitivityPublic),
		string(wizard.SensitivityInternal),
		string(wizard.SensitivityConfidential),
		string(wizard.SensitivityRestricted),
	}
	_, level, err := selectOption("Data sensitivity", levels)
	if err != nil {
		return err
	}
	state.Security.DataSensitivity = wizard.DataSensitivity(level)
	state.Security.Skipped = false
	st.Save(state)

	frameworks, err := promptList("Compliance frameworks (e.g. SOC 2, HIPAA; empty line to finish)", state.Security.Frameworks)
	if err != nil {
		return err
	}
	state.Security.Frameworks = frameworks

	gates, err := promptList("Human approval gates (e.g. refunds over $500; empty line to finish)", state.Security.ApprovalGates)
	if err != nil {
		return err
	}
	state.Security.ApprovalGates = gates

	notes, err := promptText("Guardrail notes (optional)", state.Security.GuardrailNotes, false)
	if err != nil {
		return err
	}
	state.Security.GuardrailNotes = notes
	st.Save(state)
	return nil
}

// --- Step 5: agent design ---

func stepAgentDesign(ctx context.Context, state *wizard.WizardState, st *store.StateStore) error {
	stepBanner(wizard.StepAgentDesign, "Agent Design")

	if len(state.AgentDesign.EffectiveAgents()) > 0 && keepExisting("agent design") {
		return nil
	}

	client, err := newConversation(ctx, prompts.KeyAgentDesign)
	if err != nil {
		return aiSetupError(err)
	}

	message := wizard.BuildAgentDesignContext(state)
	for {
		response, err := streamAI(ctx, client, nil, message)
		if err != nil {
			return aiCallError(err)
		}

		proposed := wizard.ParseAgentDesign(response)
		if proposed == nil {
			message = "Please restate the agent design strictly in the requested JSON format."
			fmt.Println(ui.StyleWarning.Render("The response had no usable design; asking again."))
			continue
		}
		state.AgentDesign = wizard.MergeAgentDesign(state.AgentDesign, *proposed)
		st.Save(state)

		printAgentDesign(state.AgentDesign)
		idx, _, err := selectOption("How does this design look", []string{"Confirm", "Refine with a follow-up", "Regenerate"})
		if err != nil {
			return err
		}
		switch idx {
		case 0:
			state.AgentDesign.ConfirmedAgents = state.AgentDesign.EffectiveAgents()
			state.AgentDesign.ConfirmedPattern = state.AgentDesign.EffectivePattern()
			state.AgentDesign.ConfirmedEdges = state.AgentDesign.EffectiveEdges()
			st.Save(state)
			return nil
		case 1:
			followUp, err := promptText("Your correction or question", "", true)
			if err != nil {
				return err
			}
			message = followUp
		case 2:
			message = "Propose a different agent topology for the same workflow."
		}
	}
}

func printAgentDesign(d wizard.AgentDesign) {
	fmt.Println()
	fmt.Println(ui.StyleSectionTitle.Render(fmt.Sprintf("Pattern: %s", d.EffectivePattern())))
	for _, a := range d.EffectiveAgents() {
		fmt.Printf("  • %s — %s (tools: %s)\n", a.Name, a.Role, strings.Join(a.Tools, ", "))
	}
	for _, e := range d.EffectiveEdges() {
		if e.Condition != "" {
			fmt.Printf("    %s → %s when %s\n", e.From, e.To, e.Condition)
		} else {
			fmt.Printf("    %s → %s\n", e.From, e.To)
		}
	}
}

// --- Step 6: mock data ---

func stepMockData(ctx context.Context, state *wizard.WizardState, st *store.StateStore) error {
	stepBanner(wizard.StepMockData, "Tool Mock Data")

	if len(state.MockData.Mocks) > 0 && keepExisting("tool mocks") {
		return nil
	}

	client, err := newConversation(ctx, prompts.KeyMockData)
	if err != nil {
		return aiSetupError(err)
	}
	response, err := streamAI(ctx, client, nil, wizard.BuildMockDataContext(state))
	if err != nil {
		return aiCallError(err)
	}

	mocks := wizard.ParseToolMocks(response)
	if mocks == nil {
		fmt.Println(ui.StyleWarning.Render("No usable mock definitions in the response; you can retry this step later."))
		return nil
	}
	state.MockData.Mocks = wizard.MergeToolMocks(state.MockData.Mocks, mocks)
	st.Save(state)

	fmt.Println()
	for _, m := range state.MockData.Mocks {
		fmt.Printf("  • %s.%s on %s — %s\n", m.Tool, m.Operation, m.System, m.Description)
	}
	return nil
}

// --- Step 7: demo strategy ---

func stepDemoStrategy(ctx context.Context, state *wizard.WizardState, st *store.StateStore) error {
	stepBanner(wizard.StepDemoStrategy, "Demo Strategy")

	if len(state.DemoStrategy.Scenes) > 0 && keepExisting("demo strategy") {
		return nil
	}

	client, err := newConversation(ctx, prompts.KeyDemoStrategy)
	if err != nil {
		return aiSetupError(err)
	}
	response, err := streamAI(ctx, client, nil, wizard.BuildDemoContext(state))
	if err != nil {
		return aiCallError(err)
	}

	strategy := wizard.ParseDemoStrategy(response)
	if strategy == nil {
		fmt.Println(ui.StyleWarning.Render("No usable demo strategy in the response; you can retry this step later."))
		return nil
	}
	state.DemoStrategy = *strategy
	st.Save(state)

	if p := strategy.Persona; p != nil {
		fmt.Printf("\nPersona: %s, %s\n", p.Name, p.Role)
	}
	for i, sc := range strategy.Scenes {
		fmt.Printf("  Scene %d: %s\n", i+1, sc.Title)
	}
	for _, m := range strategy.AhaMoments {
		fmt.Printf("  Aha: %s (%s %s)\n", m.Title, m.TriggerType, m.TriggerName)
	}
	return nil
}

// --- Step 8: generation ---

func stepGenerate(ctx context.Context, state *wizard.WizardState, st *store.StateStore) error {
	stepBanner(wizard.StepGenerate, "Generate Steering Documents")

	proceed, err := confirm("Generate steering documents now")
	if err != nil {
		return err
	}
	if !proceed {
		return errExitWizard
	}
	return runGeneration(ctx, state, st)
}

// --- shared helpers ---

// keepExisting asks whether to reuse a section produced in a previous
// session or regenerate it.
func keepExisting(what string) bool {
	keep, err := confirm(fmt.Sprintf("Keep the existing %s", what))
	return err == nil && keep
}

// newConversation builds a fresh AI conversation for one wizard step.
func newConversation(ctx context.Context, key prompts.Key) (*conversation.Client, error) {
	systemPrompt, err := prompts.GetPrompt(key, GetConfig().Project.TemplatesDir)
	if err != nil {
		return nil, err
	}
	return conversation.NewClientForConfig(ctx, GetLLMConfig(), systemPrompt)
}

// streamAI sends one message, printing tokens as they arrive. When state
// is non-nil the exchange is recorded in the gap-filling history.
func streamAI(ctx context.Context, client *conversation.Client, state *wizard.WizardState, message string) (string, error) {
	fmt.Println()
	fmt.Print(ui.StylePrefixAI.Render("AI> "))
	full, err := client.SendMessage(ctx, message, conversation.Callbacks{
		OnToken: func(token string) { fmt.Print(token) },
	})
	fmt.Println()
	if err != nil {
		return "", err
	}
	if state != nil {
		now := time.Now().UnixMilli()
		state.GapFilling.ConversationHistory = append(state.GapFilling.ConversationHistory,
			wizard.Message{Role: wizard.RoleUser, Content: message, Timestamp: now},
			wizard.Message{Role: wizard.RoleAssistant, Content: full, Timestamp: now},
		)
	}
	return full, nil
}

func aiSetupError(err error) error {
	if t := telemetry.Get(); t != nil {
		t.TrackAIError(string(conversation.Classify(err, "").Code))
	}
	return fmt.Errorf("could not reach the model provider: %w", err)
}

func aiCallError(err error) error {
	var ce *conversation.Error
	if errors.As(err, &ce) {
		if t := telemetry.Get(); t != nil {
			t.TrackAIError(string(ce.Code))
		}
		switch ce.Code {
		case conversation.CodeThrottled:
			return fmt.Errorf("the model provider kept throttling requests; try again shortly: %w", err)
		case conversation.CodeAccessDenied:
			return fmt.Errorf("check your API key configuration: %w", err)
		case conversation.CodeModelNotAvailable:
			return fmt.Errorf("%s: pick another model in the config: %w", ce.Message, err)
		}
	}
	return err
}

func promptText(label, defaultValue string, required bool) (string, error) {
	validateFn := func(string) error { return nil }
	if required {
		validateFn = func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("a value is required")
			}
			return nil
		}
	}
	p := promptui.Prompt{
		Label:    label,
		Default:  defaultValue,
		Validate: validateFn,
	}
	result, err := p.Run()
	if err != nil {
		return "", wrapPromptErr(err)
	}
	return strings.TrimSpace(result), nil
}

// promptList collects free-form items one per line until an empty line.
func promptList(label string, existing []string) ([]string, error) {
	fmt.Println(ui.StyleSubtle.Render(label))
	items := append([]string(nil), existing...)
	for _, item := range items {
		fmt.Printf("  • %s\n", item)
	}
	for {
		p := promptui.Prompt{Label: "Add"}
		result, err := p.Run()
		if err != nil {
			if errors.Is(wrapPromptErr(err), errExitWizard) {
				return nil, errExitWizard
			}
			return items, nil
		}
		result = strings.TrimSpace(result)
		if result == "" {
			return items, nil
		}
		items = append(items, result)
	}
}

func confirm(label string) (bool, error) {
	p := promptui.Prompt{Label: label, IsConfirm: true}
	_, err := p.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, wrapPromptErr(err)
	}
	return true, nil
}

func selectOption(label string, items []string) (int, string, error) {
	s := promptui.Select{Label: label, Items: items}
	idx, choice, err := s.Run()
	if err != nil {
		return 0, "", wrapPromptErr(err)
	}
	return idx, choice, nil
}

// wrapPromptErr maps an interrupt (ctrl-c) onto a clean wizard exit.
func wrapPromptErr(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return errExitWizard
	}
	return err
}
