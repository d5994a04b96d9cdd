// Package document assembles the chart model, undo history, clipboard,
// preset library, and persistence into the single facade the UI layers
// drive.
//
// # Concurrency
//
// One mutex serializes every entry point. Mutations run to completion
// holding it, so the model is never observable mid-gesture. The only
// asynchronous actors are debounce timers (text batching, autosave);
// their callbacks re-enter through the same mutex.
//
// # Gestures and history
//
// Discrete operations (add, remove, connect, style change, paste,
// preset apply, layout, import) commit one undo entry each. Two kinds
// of gesture coalesce instead: a drag commits once on EndDrag no matter
// how many move events it saw, and a typing burst commits once after a
// quiet window with no further edits. Undo and redo settle open
// gestures first, so they always target a whole gesture.
//
// # Persistence
//
// Documents serialize to a JSON envelope: graph content plus the preset
// library under a meta header. Every mutation schedules a debounced
// autosave through the configured store; a failed autosave is logged at
// debug level and counted by hooks but never interrupts editing.
//
// # Usage
//
//	st, err := store.NewFileStore("team.json")
//	if err != nil {
//	    return err
//	}
//	doc := document.New(document.Options{Store: st, DisplayName: "Team"})
//	if err := doc.Load(ctx); err != nil {
//	    return err
//	}
//	defer doc.Close(ctx)
//
//	id := doc.AddNode(chart.KindPerson, chart.Position{X: 120, Y: 120})
//	doc.EditNodeData(id, chart.DataPatch{Name: ptr("Ada")})
//	doc.AutoLayout()
//	doc.Undo()
package document
