//go:build js && wasm

// Posterkit WASM: the editing session running in the browser.
// Compiled with: GOOS=js GOARCH=wasm go build -o posterkit.wasm ./clients/wasm/
//
// The page fetches style suggestions itself and hands them to
// goApplySuggestion; everything else (history, rendering, export) runs here.
// Functions return a JSON or base64 string, or "error: ..." on failure.
package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"syscall/js"

	"github.com/xob0t/posterkit/pkg/generator"
	"github.com/xob0t/posterkit/pkg/poster"
	"github.com/xob0t/posterkit/pkg/render"
	"github.com/xob0t/posterkit/pkg/session"
)

var sess = session.New(session.Options{
	Engine: render.NewEngine(render.Options{}),
})

type stateJSON struct {
	Phase    string             `json:"phase"`
	State    *poster.StyleState `json:"state,omitempty"`
	Position session.Position   `json:"position"`
}

func main() {
	fmt.Println("Posterkit WASM loaded")

	js.Global().Set("goUpload", js.FuncOf(upload))
	js.Global().Set("goApplySuggestion", js.FuncOf(applySuggestion))
	js.Global().Set("goEdit", js.FuncOf(edit))
	js.Global().Set("goUndo", js.FuncOf(undo))
	js.Global().Set("goRedo", js.FuncOf(redo))
	js.Global().Set("goState", js.FuncOf(state))
	js.Global().Set("goRender", js.FuncOf(renderPoster))
	js.Global().Set("goExportAVI", js.FuncOf(exportAVI))
	js.Global().Set("goOnChange", js.FuncOf(onChange))
	js.Global().Set("goReady", js.ValueOf(true))

	// Block forever (WASM must not exit).
	select {}
}

func errValue(msg string, err error) js.Value {
	return js.ValueOf("error: " + msg + ": " + err.Error())
}

func currentState() js.Value {
	out := stateJSON{Phase: sess.Phase().String(), Position: sess.Position()}
	if st, ok := sess.Current(); ok {
		out.State = &st
	}
	data, err := json.Marshal(out)
	if err != nil {
		return errValue("encode state", err)
	}
	return js.ValueOf(string(data))
}

// goUpload(base64Data) loads a photo and clears history.
func upload(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("error: need base64Data")
	}
	data, err := base64.StdEncoding.DecodeString(args[0].String())
	if err != nil {
		return errValue("invalid base64", err)
	}
	if err := sess.UploadImage(data); err != nil {
		return errValue("upload", err)
	}
	return currentState()
}

// goApplySuggestion(suggestionJSON, requestJSON) composes the first state.
func applySuggestion(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.ValueOf("error: need suggestionJSON, requestJSON")
	}
	var sug poster.StyleSuggestion
	if err := json.Unmarshal([]byte(args[0].String()), &sug); err != nil {
		return errValue("parse suggestion", err)
	}
	var req session.GenerateRequest
	if err := json.Unmarshal([]byte(args[1].String()), &req); err != nil {
		return errValue("parse request", err)
	}
	if _, err := sess.ApplySuggestion(sug, req); err != nil {
		return errValue("apply suggestion", err)
	}
	return currentState()
}

// goEdit(patchJSON) merges a partial edit.
func edit(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("error: need patchJSON")
	}
	var patch poster.StylePatch
	if err := json.Unmarshal([]byte(args[0].String()), &patch); err != nil {
		return errValue("parse patch", err)
	}
	if _, err := sess.EditField(patch); err != nil {
		return errValue("edit", err)
	}
	return currentState()
}

func undo(this js.Value, args []js.Value) any {
	if _, _, err := sess.Undo(); err != nil {
		return errValue("undo", err)
	}
	return currentState()
}

func redo(this js.Value, args []js.Value) any {
	if _, _, err := sess.Redo(); err != nil {
		return errValue("redo", err)
	}
	return currentState()
}

func state(this js.Value, args []js.Value) any {
	return currentState()
}

// goRender() returns the poster as a PNG data URL.
func renderPoster(this js.Value, args []js.Value) any {
	img, err := sess.Render()
	if err != nil {
		return errValue("render", err)
	}
	url, err := generator.DataURL(img)
	if err != nil {
		return errValue("encode", err)
	}
	return js.ValueOf(url)
}

// goExportAVI(duration) returns the poster as a base64 MJPEG AVI.
func exportAVI(this js.Value, args []js.Value) any {
	duration := 3
	if len(args) > 0 {
		duration = max(args[0].Int(), 1)
	}
	img, err := sess.Render()
	if err != nil {
		return errValue("render", err)
	}
	var buf bytes.Buffer
	if err := generator.Encode(&buf, img, generator.Config{Format: generator.FormatAVI, Duration: duration}); err != nil {
		return errValue("generate AVI", err)
	}
	return js.ValueOf(base64.StdEncoding.EncodeToString(buf.Bytes()))
}

// goOnChange(callback) calls callback(kind, stateJSON) after every transition.
func onChange(this js.Value, args []js.Value) any {
	if len(args) < 1 || args[0].Type() != js.TypeFunction {
		return js.ValueOf("error: need callback")
	}
	cb := args[0]
	sess.Subscribe(func(ev session.Event) {
		cb.Invoke(string(ev.Kind), currentState())
	})
	return js.ValueOf("ok")
}
