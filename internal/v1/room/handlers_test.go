package room

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dooshiifox/splatoon-comp/planner/go/internal/v1/types"
)

// seedElement pulls the welcome element's uuid out of a joiner's
// on_join frame.
func seedElement(t *testing.T, conn *MockConn) uuid.UUID {
	t.Helper()
	onJoin := conn.EventsOfType(t, "on_join")
	require.Len(t, onJoin, 1)
	elements := onJoin[0]["elements"].([]any)
	require.NotEmpty(t, elements)
	return uuidFromEvent(t, elements[0].(map[string]any), "uuid")
}

func elementsFrame(t *testing.T, id *uuid.UUID, elements []types.Element, deleted []uuid.UUID) string {
	t.Helper()
	if elements == nil {
		elements = []types.Element{}
	}
	if deleted == nil {
		deleted = []uuid.UUID{}
	}
	els, err := json.Marshal(elements)
	require.NoError(t, err)
	dels, err := json.Marshal(deleted)
	require.NoError(t, err)
	if id == nil {
		return fmt.Sprintf(`{"type":"elements","elements":%s,"deleted_elements":%s}`, els, dels)
	}
	return fmt.Sprintf(`{"id":%q,"type":"elements","elements":%s,"deleted_elements":%s}`, id, els, dels)
}

func TestSelectionGrantsAndBroadcasts(t *testing.T) {
	app := NewApp(nil, true)
	a, b := NewMockConn(), NewMockConn()

	mustJoin(t, app, "select-room", "addr-a", "ava", a)
	bID := mustJoin(t, app, "select-room", "addr-b", "ben", b)
	seed := seedElement(t, b)
	a.Reset()
	b.Reset()

	cmdID := uuid.New()
	dispatch(t, app, "select-room", "addr-b", b,
		fmt.Sprintf(`{"id":%q,"type":"selection","elements":[%q]}`, cmdID, seed))

	resp := b.EventsOfType(t, "selection_response")
	require.Len(t, resp, 1)
	assert.Equal(t, cmdID.String(), resp[0]["id"])
	assert.Equal(t, bID.String(), resp[0]["user_uuid"])
	assert.Equal(t, []uuid.UUID{seed}, uuidsFromEvent(t, resp[0], "newly_selected"))
	assert.Empty(t, uuidsFromEvent(t, resp[0], "newly_deselected"))
	assert.Empty(t, uuidsFromEvent(t, resp[0], "failed_to_select"))

	broadcast := a.EventsOfType(t, "selection")
	require.Len(t, broadcast, 1)
	assert.Equal(t, bID.String(), broadcast[0]["user_uuid"])
	assert.Equal(t, []uuid.UUID{seed}, uuidsFromEvent(t, broadcast[0], "newly_selected"))
	assert.NotContains(t, broadcast[0], "failed_to_select", "broadcasts must not leak the sender's failures")
	assert.NotContains(t, broadcast[0], "id", "broadcasts answer nobody's command")
}

func TestSelectionContentionFailsQuietly(t *testing.T) {
	app := NewApp(nil, true)
	a, b := NewMockConn(), NewMockConn()

	mustJoin(t, app, "contend-room", "addr-a", "ava", a)
	mustJoin(t, app, "contend-room", "addr-b", "ben", b)
	seed := seedElement(t, b)

	dispatch(t, app, "contend-room", "addr-b", b,
		fmt.Sprintf(`{"type":"selection","elements":[%q]}`, seed))
	a.Reset()
	b.Reset()

	dispatch(t, app, "contend-room", "addr-a", a,
		fmt.Sprintf(`{"id":%q,"type":"selection","elements":[%q]}`, uuid.New(), seed))

	resp := a.EventsOfType(t, "selection_response")
	require.Len(t, resp, 1)
	assert.Equal(t, []uuid.UUID{seed}, uuidsFromEvent(t, resp[0], "failed_to_select"))
	assert.Empty(t, uuidsFromEvent(t, resp[0], "newly_selected"))
	assert.Empty(t, uuidsFromEvent(t, resp[0], "newly_deselected"))

	assert.Equal(t, 0, b.FrameCount(), "a failed grab changes nothing, so nobody else hears it")
}

func TestSelectionSwapsHeldElements(t *testing.T) {
	app := NewApp(nil, true)
	a, b := NewMockConn(), NewMockConn()

	mustJoin(t, app, "swap-room", "addr-a", "ava", a)
	mustJoin(t, app, "swap-room", "addr-b", "ben", b)
	seed := seedElement(t, b)

	second := types.NewTextElement("second")
	dispatch(t, app, "swap-room", "addr-a", a, elementsFrame(t, nil, []types.Element{second}, nil))
	dispatch(t, app, "swap-room", "addr-a", a,
		fmt.Sprintf(`{"type":"selection","elements":[%q]}`, seed))
	a.Reset()
	b.Reset()

	dispatch(t, app, "swap-room", "addr-a", a,
		fmt.Sprintf(`{"type":"selection","elements":[%q]}`, second.UUID))

	resp := a.EventsOfType(t, "selection_response")
	require.Len(t, resp, 1)
	assert.Equal(t, []uuid.UUID{second.UUID}, uuidsFromEvent(t, resp[0], "newly_selected"))
	assert.Equal(t, []uuid.UUID{seed}, uuidsFromEvent(t, resp[0], "newly_deselected"))

	broadcast := b.EventsOfType(t, "selection")
	require.Len(t, broadcast, 1)
	assert.Equal(t, []uuid.UUID{second.UUID}, uuidsFromEvent(t, broadcast[0], "newly_selected"))
	assert.Equal(t, []uuid.UUID{seed}, uuidsFromEvent(t, broadcast[0], "newly_deselected"))

	// The released element is free for the taking now.
	dispatch(t, app, "swap-room", "addr-b", b,
		fmt.Sprintf(`{"id":%q,"type":"selection","elements":[%q]}`, uuid.New(), seed))
	taken := b.EventsOfType(t, "selection_response")
	require.Len(t, taken, 1)
	assert.Equal(t, []uuid.UUID{seed}, uuidsFromEvent(t, taken[0], "newly_selected"))
}

func TestSelectionNoopAnswersWithoutBroadcast(t *testing.T) {
	app := NewApp(nil, true)
	a, b := NewMockConn(), NewMockConn()

	mustJoin(t, app, "noop-room", "addr-a", "ava", a)
	mustJoin(t, app, "noop-room", "addr-b", "ben", b)
	seed := seedElement(t, b)

	frame := fmt.Sprintf(`{"type":"selection","elements":[%q]}`, seed)
	dispatch(t, app, "noop-room", "addr-a", a, frame)
	a.Reset()
	b.Reset()

	// Selecting what is already held by the sender moves nothing.
	dispatch(t, app, "noop-room", "addr-a", a, frame)

	resp := a.EventsOfType(t, "selection_response")
	require.Len(t, resp, 1)
	assert.Empty(t, uuidsFromEvent(t, resp[0], "newly_selected"))
	assert.Empty(t, uuidsFromEvent(t, resp[0], "newly_deselected"))
	assert.Empty(t, uuidsFromEvent(t, resp[0], "failed_to_select"))
	assert.Equal(t, 0, b.FrameCount())
}

func TestSelectionViewerRefused(t *testing.T) {
	app := NewApp(nil, false)
	a, b := NewMockConn(), NewMockConn()

	mustJoin(t, app, "viewer-room", "addr-a", "ava", a)
	mustJoin(t, app, "viewer-room", "addr-b", "ben", b)
	seed := seedElement(t, b)
	a.Reset()
	b.Reset()

	cmdID := uuid.New()
	dispatch(t, app, "viewer-room", "addr-b", b,
		fmt.Sprintf(`{"id":%q,"type":"selection","elements":[%q]}`, cmdID, seed))

	require.Equal(t, 1, b.FrameCount())
	reply := b.LastEvent(t)
	assert.Equal(t, cmdID.String(), reply["id"])
	assert.Equal(t, "no_permission", reply["error"].(map[string]any)["code"])
	assert.Equal(t, 0, a.FrameCount())

	// Without an id the refusal is silent.
	b.Reset()
	dispatch(t, app, "viewer-room", "addr-b", b,
		fmt.Sprintf(`{"type":"selection","elements":[%q]}`, seed))
	assert.Equal(t, 0, b.FrameCount())

	// The element stayed free for someone who may edit.
	dispatch(t, app, "viewer-room", "addr-a", a,
		fmt.Sprintf(`{"id":%q,"type":"selection","elements":[%q]}`, uuid.New(), seed))
	resp := a.EventsOfType(t, "selection_response")
	require.Len(t, resp, 1)
	assert.Equal(t, []uuid.UUID{seed}, uuidsFromEvent(t, resp[0], "newly_selected"))
}

func TestElementsInsertBroadcasts(t *testing.T) {
	app := NewApp(nil, true)
	a, b := NewMockConn(), NewMockConn()

	mustJoin(t, app, "insert-room", "addr-a", "ava", a)
	mustJoin(t, app, "insert-room", "addr-b", "ben", b)
	a.Reset()
	b.Reset()

	el := types.NewTextElement("fresh")
	cmdID := uuid.New()
	dispatch(t, app, "insert-room", "addr-a", a, elementsFrame(t, &cmdID, []types.Element{el}, nil))

	ack := a.EventsOfType(t, "elements_changed")
	require.Len(t, ack, 1)
	assert.Equal(t, cmdID.String(), ack[0]["id"])
	ackEls := ack[0]["elements"].([]any)
	require.Len(t, ackEls, 1)
	assert.Equal(t, el.UUID.String(), ackEls[0].(map[string]any)["uuid"])
	assert.Empty(t, uuidsFromEvent(t, ack[0], "deleted_elements"))

	heard := b.EventsOfType(t, "elements_changed")
	require.Len(t, heard, 1)
	assert.NotContains(t, heard[0], "id")
	heardEls := heard[0]["elements"].([]any)
	require.Len(t, heardEls, 1)
	body := heardEls[0].(map[string]any)["ty"].(map[string]any)
	assert.Equal(t, "fresh", body["content"])
}

func TestElementsOverwriteOwnSelection(t *testing.T) {
	app := NewApp(nil, true)
	a, b := NewMockConn(), NewMockConn()

	aID := mustJoin(t, app, "overwrite-room", "addr-a", "ava", a)
	mustJoin(t, app, "overwrite-room", "addr-b", "ben", b)
	seed := seedElement(t, b)

	dispatch(t, app, "overwrite-room", "addr-a", a,
		fmt.Sprintf(`{"type":"selection","elements":[%q]}`, seed))
	a.Reset()
	b.Reset()

	edited := types.NewTextElement("rewritten")
	edited.UUID = seed
	edited.SelectedBy = &aID
	dispatch(t, app, "overwrite-room", "addr-a", a, elementsFrame(t, nil, []types.Element{edited}, nil))

	heard := b.EventsOfType(t, "elements_changed")
	require.Len(t, heard, 1)
	got := heard[0]["elements"].([]any)[0].(map[string]any)
	assert.Equal(t, seed.String(), got["uuid"])
	assert.Equal(t, "rewritten", got["ty"].(map[string]any)["content"])
	assert.Equal(t, aID.String(), got["selected_by"])
}

func TestElementsHeldByOtherReverted(t *testing.T) {
	app := NewApp(nil, true)
	a, b := NewMockConn(), NewMockConn()

	mustJoin(t, app, "held-room", "addr-a", "ava", a)
	bID := mustJoin(t, app, "held-room", "addr-b", "ben", b)
	seed := seedElement(t, b)

	dispatch(t, app, "held-room", "addr-b", b,
		fmt.Sprintf(`{"type":"selection","elements":[%q]}`, seed))
	a.Reset()
	b.Reset()

	edited := types.NewTextElement("stolen edit")
	edited.UUID = seed
	cmdID := uuid.New()
	dispatch(t, app, "held-room", "addr-a", a, elementsFrame(t, &cmdID, []types.Element{edited}, nil))

	ack := a.EventsOfType(t, "elements_changed")
	require.Len(t, ack, 1)
	reverted := ack[0]["elements"].([]any)[0].(map[string]any)
	assert.Equal(t, seed.String(), reverted["uuid"])
	assert.Equal(t, "Hello, world", reverted["ty"].(map[string]any)["content"], "the server copy wins")
	assert.Equal(t, bID.String(), reverted["selected_by"])

	assert.Equal(t, 0, b.FrameCount(), "nothing changed, so the holder hears nothing")
}

func TestElementsViewerReverted(t *testing.T) {
	app := NewApp(nil, false)
	a, b := NewMockConn(), NewMockConn()

	mustJoin(t, app, "revert-room", "addr-a", "ava", a)
	mustJoin(t, app, "revert-room", "addr-b", "ben", b)
	seed := seedElement(t, b)
	a.Reset()
	b.Reset()

	edited := types.NewTextElement("viewer edit")
	edited.UUID = seed
	invented := types.NewTextElement("viewer invention")
	cmdID := uuid.New()
	dispatch(t, app, "revert-room", "addr-b", b,
		elementsFrame(t, &cmdID, []types.Element{edited, invented}, nil))

	ack := b.EventsOfType(t, "elements_changed")
	require.Len(t, ack, 1)
	assert.Equal(t, cmdID.String(), ack[0]["id"])
	reverted := ack[0]["elements"].([]any)
	require.Len(t, reverted, 1)
	assert.Equal(t, "Hello, world", reverted[0].(map[string]any)["ty"].(map[string]any)["content"])
	assert.Equal(t, []uuid.UUID{invented.UUID}, uuidsFromEvent(t, ack[0], "deleted_elements"),
		"the invented element is ordered deleted, not errored")

	assert.Equal(t, 0, a.FrameCount())
}

func TestElementsDelete(t *testing.T) {
	app := NewApp(nil, true)
	a, b := NewMockConn(), NewMockConn()

	mustJoin(t, app, "delete-room", "addr-a", "ava", a)
	mustJoin(t, app, "delete-room", "addr-b", "ben", b)
	seed := seedElement(t, b)
	a.Reset()
	b.Reset()

	dispatch(t, app, "delete-room", "addr-a", a, elementsFrame(t, nil, nil, []uuid.UUID{seed}))

	ack := a.EventsOfType(t, "elements_changed")
	require.Len(t, ack, 1)
	assert.Equal(t, []uuid.UUID{seed}, uuidsFromEvent(t, ack[0], "deleted_elements"))

	heard := b.EventsOfType(t, "elements_changed")
	require.Len(t, heard, 1)
	assert.Equal(t, []uuid.UUID{seed}, uuidsFromEvent(t, heard[0], "deleted_elements"))

	// Deleting it again is a no-op answered with empty lists.
	a.Reset()
	b.Reset()
	dispatch(t, app, "delete-room", "addr-a", a, elementsFrame(t, nil, nil, []uuid.UUID{seed}))
	ack = a.EventsOfType(t, "elements_changed")
	require.Len(t, ack, 1)
	assert.Empty(t, uuidsFromEvent(t, ack[0], "deleted_elements"))
	assert.Empty(t, ack[0]["elements"].([]any))
	assert.Equal(t, 0, b.FrameCount())
}

func TestElementsDeleteHeldByOtherReverted(t *testing.T) {
	app := NewApp(nil, true)
	a, b := NewMockConn(), NewMockConn()

	mustJoin(t, app, "guard-room", "addr-a", "ava", a)
	mustJoin(t, app, "guard-room", "addr-b", "ben", b)
	seed := seedElement(t, b)

	dispatch(t, app, "guard-room", "addr-b", b,
		fmt.Sprintf(`{"type":"selection","elements":[%q]}`, seed))
	a.Reset()
	b.Reset()

	dispatch(t, app, "guard-room", "addr-a", a, elementsFrame(t, nil, nil, []uuid.UUID{seed}))

	ack := a.EventsOfType(t, "elements_changed")
	require.Len(t, ack, 1)
	restored := ack[0]["elements"].([]any)
	require.Len(t, restored, 1, "the held element comes back instead of dying")
	assert.Equal(t, seed.String(), restored[0].(map[string]any)["uuid"])
	assert.Empty(t, uuidsFromEvent(t, ack[0], "deleted_elements"))
	assert.Equal(t, 0, b.FrameCount())
}

func TestCanvasSwitch(t *testing.T) {
	app := NewApp(nil, true)
	a, b := NewMockConn(), NewMockConn()

	aID := mustJoin(t, app, "canvas-room", "addr-a", "ava", a)
	mustJoin(t, app, "canvas-room", "addr-b", "ben", b)
	a.Reset()
	b.Reset()

	cmdID := uuid.New()
	dispatch(t, app, "canvas-room", "addr-a", a,
		fmt.Sprintf(`{"id":%q,"type":"canvas","canvas":5}`, cmdID))

	resp := a.EventsOfType(t, "canvas_response")
	require.Len(t, resp, 1)
	assert.Equal(t, cmdID.String(), resp[0]["id"])
	assert.Equal(t, float64(5), resp[0]["canvas"])
	elements := resp[0]["elements"].([]any)
	require.Len(t, elements, 1, "every canvas starts with the welcome element")
	assert.Equal(t, "Hello, world", elements[0].(map[string]any)["ty"].(map[string]any)["content"])

	change := b.EventsOfType(t, "user_change")
	require.Len(t, change, 1)
	moved := change[0]["user"].(map[string]any)
	assert.Equal(t, aID.String(), moved["uuid"])
	assert.Equal(t, float64(5), moved["canvas"])
}

func TestCanvasSwitchKeepsSelectionsOnDepartedCanvas(t *testing.T) {
	app := NewApp(nil, true)
	a, b := NewMockConn(), NewMockConn()

	mustJoin(t, app, "parked-room", "addr-a", "ava", a)
	mustJoin(t, app, "parked-room", "addr-b", "ben", b)
	seed := seedElement(t, b)

	dispatch(t, app, "parked-room", "addr-a", a,
		fmt.Sprintf(`{"type":"selection","elements":[%q]}`, seed))
	dispatch(t, app, "parked-room", "addr-a", a, `{"type":"canvas","canvas":1}`)
	b.Reset()

	// Only selections on the canvas being entered are released, so the
	// absent user still holds the element.
	dispatch(t, app, "parked-room", "addr-b", b,
		fmt.Sprintf(`{"id":%q,"type":"selection","elements":[%q]}`, uuid.New(), seed))
	resp := b.EventsOfType(t, "selection_response")
	require.Len(t, resp, 1)
	assert.Equal(t, []uuid.UUID{seed}, uuidsFromEvent(t, resp[0], "failed_to_select"))

	// Returning to the canvas releases them.
	dispatch(t, app, "parked-room", "addr-a", a, `{"type":"canvas","canvas":0}`)
	b.Reset()
	dispatch(t, app, "parked-room", "addr-b", b,
		fmt.Sprintf(`{"id":%q,"type":"selection","elements":[%q]}`, uuid.New(), seed))
	resp = b.EventsOfType(t, "selection_response")
	require.Len(t, resp, 1)
	assert.Equal(t, []uuid.UUID{seed}, uuidsFromEvent(t, resp[0], "newly_selected"))
}

func TestAccessLevelAdjustmentByNonAdminRefused(t *testing.T) {
	app := NewApp(nil, false)
	a, b := NewMockConn(), NewMockConn()

	aID := mustJoin(t, app, "ala-room", "addr-a", "ava", a)
	mustJoin(t, app, "ala-room", "addr-b", "ben", b)
	a.Reset()
	b.Reset()

	cmdID := uuid.New()
	dispatch(t, app, "ala-room", "addr-b", b,
		fmt.Sprintf(`{"id":%q,"type":"access_level_adjustment","user":%q,"access_level":"view"}`, cmdID, aID))

	require.Equal(t, 1, b.FrameCount())
	reply := b.LastEvent(t)
	assert.Equal(t, cmdID.String(), reply["id"])
	assert.Equal(t, "no_permission", reply["error"].(map[string]any)["code"])
	assert.Equal(t, 0, a.FrameCount())
}

func TestAccessLevelAdjustmentUnknownTarget(t *testing.T) {
	app := NewApp(nil, false)
	a := NewMockConn()

	mustJoin(t, app, "ala-miss", "addr-a", "ava", a)
	a.Reset()

	cmdID := uuid.New()
	dispatch(t, app, "ala-miss", "addr-a", a,
		fmt.Sprintf(`{"id":%q,"type":"access_level_adjustment","user":%q,"access_level":"edit"}`, cmdID, uuid.New()))

	require.Equal(t, 1, a.FrameCount())
	reply := a.LastEvent(t)
	assert.Equal(t, cmdID.String(), reply["id"])
	assert.Equal(t, "user_does_not_exist", reply["error"].(map[string]any)["code"])
}

func TestAccessLevelAdjustmentAnswersThroughBroadcastAlone(t *testing.T) {
	app := NewApp(nil, false)
	a, b := NewMockConn(), NewMockConn()

	mustJoin(t, app, "ala-grant", "addr-a", "ava", a)
	bID := mustJoin(t, app, "ala-grant", "addr-b", "ben", b)
	a.Reset()
	b.Reset()

	dispatch(t, app, "ala-grant", "addr-a", a,
		fmt.Sprintf(`{"id":%q,"type":"access_level_adjustment","user":%q,"access_level":"edit"}`, uuid.New(), bID))

	require.Equal(t, 1, a.FrameCount(), "the sender hears only the broadcast")
	change := a.LastEvent(t)
	assert.Equal(t, "user_change", change["type"])
	assert.NotContains(t, change, "id", "the command id is dropped on success")
	granted := change["user"].(map[string]any)
	assert.Equal(t, bID.String(), granted["uuid"])
	assert.Equal(t, "edit", granted["access_level"])

	require.Equal(t, 1, b.FrameCount())
	assert.Equal(t, "user_change", b.LastEvent(t)["type"])
}

func TestAdminHandoverDemotesPreviousAdmin(t *testing.T) {
	app := NewApp(nil, false)
	a, b := NewMockConn(), NewMockConn()

	aID := mustJoin(t, app, "handover", "addr-a", "ava", a)
	bID := mustJoin(t, app, "handover", "addr-b", "ben", b)
	a.Reset()
	b.Reset()

	dispatch(t, app, "handover", "addr-a", a,
		fmt.Sprintf(`{"type":"access_level_adjustment","user":%q,"access_level":"admin"}`, bID))

	changes := b.EventsOfType(t, "user_change")
	require.Len(t, changes, 2)
	first := changes[0]["user"].(map[string]any)
	assert.Equal(t, bID.String(), first["uuid"])
	assert.Equal(t, "admin", first["access_level"])
	second := changes[1]["user"].(map[string]any)
	assert.Equal(t, aID.String(), second["uuid"])
	assert.Equal(t, "edit", second["access_level"])

	// The demoted admin may no longer manage levels.
	a.Reset()
	cmdID := uuid.New()
	dispatch(t, app, "handover", "addr-a", a,
		fmt.Sprintf(`{"id":%q,"type":"access_level_adjustment","user":%q,"access_level":"view"}`, cmdID, bID))
	reply := a.LastEvent(t)
	assert.Equal(t, "no_permission", reply["error"].(map[string]any)["code"])
}

func TestDemoteToViewReleasesSelectionsEverywhere(t *testing.T) {
	app := NewApp(nil, true)
	a, b := NewMockConn(), NewMockConn()

	mustJoin(t, app, "demote-room", "addr-a", "ava", a)
	bID := mustJoin(t, app, "demote-room", "addr-b", "ben", b)
	seed := seedElement(t, b)

	// B holds an element on canvas 0 and one on canvas 2.
	dispatch(t, app, "demote-room", "addr-b", b,
		fmt.Sprintf(`{"type":"selection","elements":[%q]}`, seed))
	dispatch(t, app, "demote-room", "addr-b", b, `{"type":"canvas","canvas":2}`)
	resp := b.EventsOfType(t, "canvas_response")
	require.Len(t, resp, 1)
	far := uuidFromEvent(t, resp[0]["elements"].([]any)[0].(map[string]any), "uuid")
	dispatch(t, app, "demote-room", "addr-b", b,
		fmt.Sprintf(`{"type":"selection","elements":[%q]}`, far))

	dispatch(t, app, "demote-room", "addr-a", a,
		fmt.Sprintf(`{"type":"access_level_adjustment","user":%q,"access_level":"view"}`, bID))

	// Both holds are gone: the admin can take each element.
	dispatch(t, app, "demote-room", "addr-a", a,
		fmt.Sprintf(`{"id":%q,"type":"selection","elements":[%q]}`, uuid.New(), seed))
	sel := a.EventsOfType(t, "selection_response")
	require.Len(t, sel, 1)
	assert.Equal(t, []uuid.UUID{seed}, uuidsFromEvent(t, sel[0], "newly_selected"))

	dispatch(t, app, "demote-room", "addr-a", a, `{"type":"canvas","canvas":2}`)
	a.Reset()
	dispatch(t, app, "demote-room", "addr-a", a,
		fmt.Sprintf(`{"id":%q,"type":"selection","elements":[%q]}`, uuid.New(), far))
	sel = a.EventsOfType(t, "selection_response")
	require.Len(t, sel, 1)
	assert.Equal(t, []uuid.UUID{far}, uuidsFromEvent(t, sel[0], "newly_selected"))
}
