package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qc-advancedmedic/nui/internal/config"
	"github.com/qc-advancedmedic/nui/internal/deathscreen"
	"github.com/qc-advancedmedic/nui/internal/dispatcher"
	"github.com/qc-advancedmedic/nui/internal/gateway"
	"github.com/qc-advancedmedic/nui/internal/influx"
	"github.com/qc-advancedmedic/nui/internal/inspection"
	"github.com/qc-advancedmedic/nui/internal/journal"
	"github.com/qc-advancedmedic/nui/internal/journal/memory"
	"github.com/qc-advancedmedic/nui/internal/state"
	"github.com/qc-advancedmedic/nui/pkg/core"
	"github.com/qc-advancedmedic/nui/pkg/nui"
)

var fixedNow = time.Date(2026, 3, 14, 9, 5, 0, 0, time.UTC)

type outcomeRecorder struct {
	mu       sync.Mutex
	outcomes []influx.Outcome
}

func (r *outcomeRecorder) WriteOutcome(_ context.Context, o influx.Outcome) error {
	r.mu.Lock()
	r.outcomes = append(r.outcomes, o)
	r.mu.Unlock()
	return nil
}

func (r *outcomeRecorder) all() []influx.Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]influx.Outcome(nil), r.outcomes...)
}

type fixture struct {
	svc      *Service
	gw       *gateway.Mock
	journal  *memory.Backend
	outcomes *outcomeRecorder
}

func newFixture(t *testing.T, successRate float64) *fixture {
	t.Helper()
	gw := gateway.NewMock(successRate, 0, rand.New(rand.NewSource(1)))
	j := memory.New(config.MemoryConfig{})
	out := &outcomeRecorder{}
	svc := NewService(Dependencies{
		Store:     state.NewStore(),
		Gateway:   gw,
		Journal:   j,
		Outcomes:  out,
		Rand:      rand.New(rand.NewSource(1)),
		Now:       func() time.Time { return fixedNow },
		DeathTick: time.Hour,
	})
	gw.OnPush(func(ctx context.Context, raw []byte) error {
		_, err := svc.HandlePush(ctx, raw)
		return err
	})

	d, err := dispatcher.New(svc.deps.Logger)
	require.NoError(t, err)
	svc.RegisterHandlers(d)
	t.Cleanup(svc.Close)

	return &fixture{svc: svc, gw: gw, journal: j, outcomes: out}
}

func (f *fixture) push(t *testing.T, raw string) {
	t.Helper()
	_, err := f.svc.HandlePush(context.Background(), []byte(raw))
	require.NoError(t, err)
}

func (f *fixture) act(t *testing.T, raw string) (any, error) {
	t.Helper()
	return f.svc.HandleAction(context.Background(), []byte(raw))
}

func (f *fixture) entries(t *testing.T, kind journal.Kind) []journal.Entry {
	t.Helper()
	entries, err := f.journal.Entries(context.Background(), journal.Filter{Kind: kind})
	require.NoError(t, err)
	return entries
}

func mustField(t *testing.T, raw json.RawMessage, key string) string {
	t.Helper()
	var obj map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &obj))
	return string(obj[key])
}

const showInspection = `{"type":"show-inspection-panel","data":{
	"playerName":"Arthur","playerId":7,
	"wounds":{"larm":{"painLevel":2,"bleedingLevel":4},"rleg":{"painLevel":9,"bleedingLevel":8}}
}}`

func TestRegisterHandlers_EveryType(t *testing.T) {
	d, err := dispatcher.New(slog.Default())
	require.NoError(t, err)
	NewService(Dependencies{}).RegisterHandlers(d)

	for _, typ := range nui.PushTypes {
		assert.True(t, d.HasHandler(typ), typ)
	}
	for _, typ := range nui.ActionTypes {
		assert.True(t, d.HasHandler(typ), typ)
	}
}

func TestShowInspectionPanel_RequestsVitals(t *testing.T) {
	f := newFixture(t, 1)
	f.push(t, showInspection)

	vm := f.svc.ViewModel()
	assert.Equal(t, state.ViewInspection, vm.View)
	require.NotNil(t, vm.Inspection)
	assert.Equal(t, "Arthur", vm.Inspection.PlayerName)
	assert.Nil(t, vm.Medical)

	assert.Equal(t, []string{gateway.EndpointMedicalRequest}, f.gw.Endpoints())

	pushes := f.entries(t, journal.KindPush)
	require.Len(t, pushes, 2)
	assert.Equal(t, nui.PushShowInspectionPanel, pushes[0].Type)
	assert.Equal(t, "7", pushes[0].PatientID)
	assert.Equal(t, nui.PushVitalsResponse, pushes[1].Type, "mock host answers the vitals request")

	outcomes := f.entries(t, journal.KindOutcome)
	require.Len(t, outcomes, 1)
	assert.Equal(t, gateway.EndpointMedicalRequest, outcomes[0].Endpoint)
	assert.Equal(t, "7", outcomes[0].PatientID)
	assert.True(t, outcomes[0].Success)
}

func TestShowInspectionPanel_SamePatientKeepsFindings(t *testing.T) {
	f := newFixture(t, 1)
	f.push(t, showInspection)
	_, err := f.act(t, `{"type":"inspection/inspect","data":{"bodyPart":"rleg"}}`)
	require.NoError(t, err)

	first, err := f.svc.activeSession()
	require.NoError(t, err)
	require.NotNil(t, first.Discovered(core.RightLeg))

	f.push(t, `{"type":"show-inspection-panel","data":{
		"playerName":"Arthur","playerId":7,
		"wounds":{"larm":{"painLevel":2,"bleedingLevel":4},"rleg":{"painLevel":9,"bleedingLevel":3}}
	}}`)
	again, err := f.svc.activeSession()
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.NotNil(t, again.Discovered(core.RightLeg))
	assert.Equal(t, 3, again.Data().Wounds.Get(core.RightLeg).BleedingLevel)
	assert.Equal(t, []string{"rleg"}, again.ViewModel().Inspected)

	f.push(t, `{"type":"show-inspection-panel","data":{"playerName":"John","playerId":8}}`)
	other, err := f.svc.activeSession()
	require.NoError(t, err)
	assert.NotSame(t, first, other)
	assert.Empty(t, other.ViewModel().Inspected)
}

func TestInspectAction(t *testing.T) {
	f := newFixture(t, 1)
	f.push(t, showInspection)

	result, err := f.act(t, `{"type":"inspection/inspect","data":{"bodyPart":"rleg"}}`)
	require.NoError(t, err)
	report, ok := result.(inspection.Report)
	require.True(t, ok, "inspect returns the report, got %T", result)
	assert.NotEmpty(t, report.Recommendation)

	actions := f.entries(t, journal.KindAction)
	require.Len(t, actions, 1)
	assert.Equal(t, nui.ActionInspect, actions[0].Type)
	assert.Equal(t, "rleg", actions[0].BodyPart)
	assert.True(t, actions[0].Success)
	assert.JSONEq(t, `"rleg"`, mustField(t, actions[0].Payload, "bodyPart"))
}

func TestApplyBandage_RecordsOutcome(t *testing.T) {
	f := newFixture(t, 1)
	f.push(t, showInspection)

	_, err := f.act(t, `{"type":"inspection/select-body-part","data":{"bodyPart":"larm"}}`)
	require.NoError(t, err)
	_, err = f.act(t, `{"type":"inspection/select-item","data":{"kind":"bandage","itemId":"cotton"}}`)
	require.NoError(t, err)
	_, err = f.act(t, `{"type":"inspection/apply-bandage"}`)
	require.NoError(t, err)

	var treatment *influx.Outcome
	for _, o := range f.outcomes.all() {
		if o.Endpoint == gateway.EndpointMedicalTreatment {
			treatment = &o
		}
	}
	require.NotNil(t, treatment)
	assert.Equal(t, gateway.ActionApplyBandage, treatment.Action)
	assert.Equal(t, "larm", treatment.BodyPart)
	assert.Equal(t, "cotton", treatment.ItemType)
	assert.Equal(t, "7", treatment.PatientID)
	assert.True(t, treatment.Success)

	pushes := f.entries(t, journal.KindPush)
	assert.Equal(t, nui.PushTreatmentResponse, pushes[len(pushes)-1].Type)

	vm := f.svc.ViewModel().Inspection
	require.NotNil(t, vm)
	require.NotNil(t, vm.Notification)
	assert.Contains(t, vm.Notification.Message, "Cotton Bandage")
}

func TestApplyBandage_FailedTreatmentOutcome(t *testing.T) {
	f := newFixture(t, 0)
	f.push(t, showInspection)

	_, err := f.act(t, `{"type":"inspection/select-item","data":{"kind":"medicine","itemId":"laudanum"}}`)
	require.NoError(t, err)
	_, err = f.act(t, `{"type":"inspection/administer-medicine"}`)
	require.NoError(t, err)

	outcomes := f.entries(t, journal.KindOutcome)
	last := outcomes[len(outcomes)-1]
	assert.Equal(t, gateway.EndpointMedicalTreatment, last.Endpoint)
	assert.False(t, last.Success)
	assert.Contains(t, last.Message, "Laudanum")
}

func TestActionWithoutPanel(t *testing.T) {
	f := newFixture(t, 1)

	tests := []string{
		`{"type":"inspection/inspect","data":{"bodyPart":"head"}}`,
		`{"type":"medical/open-treatments"}`,
		`{"type":"death/respawn"}`,
	}
	for _, raw := range tests {
		_, err := f.act(t, raw)
		assert.ErrorIs(t, err, ErrNoPanel, raw)
	}

	actions := f.entries(t, journal.KindAction)
	require.Len(t, actions, len(tests))
	for _, a := range actions {
		assert.False(t, a.Success)
		assert.NotEmpty(t, a.Message)
	}
	assert.Empty(t, f.gw.Calls())
}

func TestInvalidAction(t *testing.T) {
	f := newFixture(t, 1)
	_, err := f.act(t, `{"type":"inspection/inspekt"}`)
	assert.Error(t, err)
	assert.Empty(t, f.entries(t, journal.KindAction), "undecodable actions are not journaled")
}

func TestInspectionPushWithoutSession(t *testing.T) {
	f := newFixture(t, 1)
	f.push(t, `{"type":"tool-usage-result","data":{"success":true}}`)

	_, version := f.svc.Store().Get()
	assert.Zero(t, version, "dropped push does not notify")
	assert.Len(t, f.entries(t, journal.KindPush), 1)
}

func TestConditionUpdateForOtherPatient(t *testing.T) {
	f := newFixture(t, 1)
	f.push(t, showInspection)
	_, before := f.svc.Store().Get()

	f.push(t, `{"type":"patient-condition-update","playerId":99,"conditions":{"wounds":{"head":{"painLevel":3}}}}`)
	_, after := f.svc.Store().Get()
	assert.Equal(t, before, after)

	f.push(t, `{"type":"patient-condition-update","playerId":7,"conditions":{"wounds":{"head":{"painLevel":3}}}}`)
	_, after = f.svc.Store().Get()
	assert.Greater(t, after, before)
}

func TestPushWarningsReturned(t *testing.T) {
	f := newFixture(t, 1)
	warnings, err := f.svc.HandlePush(context.Background(), []byte(`{"type":"show-medical-panel","data":{"wounds":{"lrm":{"painLevel":1}}}}`))
	require.NoError(t, err)
	require.Len(t, warnings, 1)

	pushes := f.entries(t, journal.KindPush)
	require.Len(t, pushes, 1)
	assert.Contains(t, pushes[0].Message, "1 warning")
}

func TestDeathScreen(t *testing.T) {
	f := newFixture(t, 1)
	f.push(t, `{"type":"show-death-screen","data":{"message":"You are dying","seconds":300,"canRespawn":false,"medicsOnDuty":2}}`)

	vm := f.svc.ViewModel()
	assert.Equal(t, state.ViewDeath, vm.View)
	require.NotNil(t, vm.DeathScreen)
	assert.Equal(t, 300, vm.DeathScreen.TimeLeft)
	assert.True(t, vm.DeathScreen.ShowCallMedic)
	assert.False(t, vm.DeathScreen.ShowRespawn)

	_, err := f.act(t, `{"type":"death/respawn"}`)
	assert.ErrorIs(t, err, deathscreen.ErrCannotRespawn)

	_, err = f.act(t, `{"type":"death/call-medic"}`)
	require.NoError(t, err)

	f.push(t, `{"type":"update-death-timer","data":{"canRespawn":true}}`)
	_, err = f.act(t, `{"type":"death/respawn"}`)
	require.NoError(t, err)

	assert.Equal(t, []string{gateway.EndpointDeathCallMedic, gateway.EndpointDeathRespawn}, f.gw.Endpoints())

	f.push(t, `{"type":"hide-death-screen"}`)
	vm = f.svc.ViewModel()
	assert.Equal(t, state.ViewHidden, vm.View)
	assert.Nil(t, vm.DeathScreen)
	_, err = f.act(t, `{"type":"death/call-medic"}`)
	assert.ErrorIs(t, err, ErrNoPanel)
}

func TestMedicalPanel(t *testing.T) {
	f := newFixture(t, 1)
	f.push(t, `{"type":"show-medical-panel","data":{
		"wounds":{"larm":{"painLevel":2,"bleedingLevel":4}},
		"isSelfExamination":true
	}}`)

	vm := f.svc.ViewModel()
	assert.Equal(t, state.ViewMedical, vm.View)
	require.NotNil(t, vm.Medical)
	assert.True(t, vm.Medical.IsSelfExamination)

	_, err := f.act(t, `{"type":"medical/apply-bandage","data":{"bodyPart":"larm","itemName":"cotton_band"}}`)
	require.NoError(t, err)

	_, err = f.act(t, `{"type":"medical/close"}`)
	require.NoError(t, err)

	assert.Equal(t, []string{gateway.EndpointApplyBandage, gateway.EndpointCloseMedicalPanel}, f.gw.Endpoints())
	assert.Equal(t, state.ViewHidden, f.svc.ViewModel().View)

	outcomes := f.outcomes.all()
	require.Len(t, outcomes, 2)
	assert.Equal(t, "LARM", outcomes[0].BodyPart)
	assert.Equal(t, "cotton_band", outcomes[0].ItemType)
}

func TestHideAll_ClosesEverything(t *testing.T) {
	f := newFixture(t, 1)
	f.push(t, showInspection)
	_, err := f.act(t, `{"type":"inspection/vitals-start"}`)
	require.NoError(t, err)

	f.push(t, `{"type":"hide-all"}`)

	assert.Equal(t, state.ViewHidden, f.svc.ViewModel().View)
	f.svc.mu.Lock()
	assert.Nil(t, f.svc.session)
	assert.Empty(t, f.svc.holds)
	f.svc.mu.Unlock()
}

func TestVitalsHold_StartStop(t *testing.T) {
	f := newFixture(t, 1)
	f.push(t, showInspection)

	_, err := f.act(t, `{"type":"inspection/vitals-start"}`)
	require.NoError(t, err)
	f.svc.mu.Lock()
	assert.Contains(t, f.svc.holds, inspection.HoldVitals)
	f.svc.mu.Unlock()

	_, err = f.act(t, `{"type":"inspection/vitals-stop"}`)
	require.NoError(t, err)
	f.svc.mu.Lock()
	assert.NotContains(t, f.svc.holds, inspection.HoldVitals)
	f.svc.mu.Unlock()

	assert.False(t, f.svc.ViewModel().Inspection.CheckingVitals)
}

func TestCloseInspection(t *testing.T) {
	f := newFixture(t, 1)
	f.push(t, showInspection)

	_, err := f.act(t, `{"type":"inspection/close"}`)
	require.NoError(t, err)
	assert.Equal(t, state.ViewHidden, f.svc.ViewModel().View)
	assert.Contains(t, f.gw.Endpoints(), gateway.EndpointCloseInspectionPanel)

	_, err = f.act(t, `{"type":"inspection/select-bone","data":{"bodyPart":"head"}}`)
	assert.ErrorIs(t, err, ErrNoPanel)
}

func TestServiceWithoutDispatcher(t *testing.T) {
	gw := gateway.NewMock(1, 0, rand.New(rand.NewSource(1)))
	svc := NewService(Dependencies{Gateway: gw})
	t.Cleanup(svc.Close)

	_, err := svc.HandlePush(context.Background(), []byte(`{"type":"show-medical-panel","data":{}}`))
	require.NoError(t, err)
	_, err = svc.HandleAction(context.Background(), []byte(`{"type":"medical/close-subpanel"}`))
	require.NoError(t, err)
	assert.Equal(t, state.ViewMedical, svc.ViewModel().View)
}

type emptyReplyGateway struct{}

func (emptyReplyGateway) Post(context.Context, string, any) (gateway.Response, error) {
	return gateway.Response{}, nil
}

func TestOutcome_TreatmentNeedsSuccessStatus(t *testing.T) {
	out := &outcomeRecorder{}
	svc := NewService(Dependencies{Gateway: emptyReplyGateway{}, Outcomes: out, Now: func() time.Time { return fixedNow }})
	t.Cleanup(svc.Close)

	_, err := svc.Gateway().Post(context.Background(), gateway.EndpointMedicalTreatment, gateway.TreatmentRequest{Action: gateway.ActionApplyBandage})
	require.NoError(t, err)
	_, err = svc.Gateway().Post(context.Background(), gateway.EndpointDisableFocus, nil)
	require.NoError(t, err)

	outcomes := out.all()
	require.Len(t, outcomes, 2)
	assert.False(t, outcomes[0].Success, "treatment reply without a status")
	assert.True(t, outcomes[1].Success, "fire-and-forget reply")
}

func TestDescribe(t *testing.T) {
	o := describe(gateway.EndpointMedicalAction, gateway.ToolRequest{Action: "use-tool", Target: "stethoscope", PlayerID: "3"})
	assert.Equal(t, influx.Outcome{Endpoint: gateway.EndpointMedicalAction, Action: "use-tool", ItemType: "stethoscope", PatientID: "3"}, o)

	o = describe(gateway.EndpointRemoveTreatment, gateway.BodyPartTreatment{BodyPart: "HEAD", TreatmentType: "tourniquet"})
	assert.Equal(t, "tourniquet", o.ItemType)

	o = describe(gateway.EndpointDeathRespawn, struct{}{})
	assert.Equal(t, influx.Outcome{Endpoint: gateway.EndpointDeathRespawn}, o)
}
