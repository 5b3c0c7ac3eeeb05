//go:build js && wasm

// stencilkit WASM - In-browser interactive preview.
// Compiled with: GOOS=js GOARCH=wasm go build -o stencilkit.wasm ./clients/wasm/
package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"log/slog"
	"os"
	"sync"
	"syscall/js"

	"github.com/xob0t/stencilkit/pkg/compose"
	"github.com/xob0t/stencilkit/pkg/document"
	"github.com/xob0t/stencilkit/pkg/generator"
)

var (
	engine *compose.Engine
	logger *slog.Logger

	// lastFrame is the last successful preview, shown again when a render
	// fails mid-edit.
	lastMu    sync.Mutex
	lastFrame string
)

func main() {
	var err error
	logger, err = compose.InstallLogger(os.Stderr, "info")
	if err != nil {
		panic(err)
	}
	engine, err = compose.NewInteractive(compose.Config{Logger: logger})
	if err != nil {
		panic(err)
	}
	fmt.Println("stencilkit WASM loaded")

	// Register JS-callable functions.
	js.Global().Set("goRenderImage", js.FuncOf(renderImage))
	js.Global().Set("goExportImage", js.FuncOf(exportImage))
	js.Global().Set("goFields", js.FuncOf(fields))
	js.Global().Set("goRegisterAsset", js.FuncOf(registerAsset))
	js.Global().Set("goRemoveAsset", js.FuncOf(removeAsset))
	js.Global().Set("goRegisterFont", js.FuncOf(registerFont))
	js.Global().Set("goSetAvailableFonts", js.FuncOf(setAvailableFonts))
	js.Global().Set("goReady", js.ValueOf(true))

	// Block forever (WASM must not exit).
	select {}
}

func errorValue(format string, args ...any) js.Value {
	return js.ValueOf("error: " + fmt.Sprintf(format, args...))
}

func renderDoc(docJSON, fieldsJSON string, scale float64) (*image.RGBA, error) {
	doc, err := document.Parse([]byte(docJSON))
	if err != nil {
		return nil, err
	}
	var fv document.FieldValues
	if fieldsJSON != "" && fieldsJSON != "null" {
		var warnings []string
		fv, warnings = document.ParseFields([]byte(fieldsJSON))
		for _, w := range warnings {
			logger.Warn(w)
		}
	}
	return engine.Render(context.Background(), doc, fv, compose.RenderOptions{Scale: scale})
}

func encode(img image.Image, format generator.Format) (string, error) {
	var buf bytes.Buffer
	if err := generator.GenerateToWriter(&buf, format, img, generator.Config{}); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func scaleArg(args []js.Value, i int) float64 {
	if len(args) > i && args[i].Type() == js.TypeNumber {
		return args[i].Float()
	}
	return 1
}

// goRenderImage(documentJSON, fieldsJSON, [scale]) - render a preview.
// Returns {png, error}: on failure png holds the last good frame.
func renderImage(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return errorValue("need documentJSON, fieldsJSON")
	}

	img, err := renderDoc(args[0].String(), args[1].String(), scaleArg(args, 2))
	var png string
	if err == nil {
		png, err = encode(img, generator.PNG)
	}

	lastMu.Lock()
	defer lastMu.Unlock()
	if err != nil {
		logger.Error("preview failed, keeping last frame", "err", err)
		return js.ValueOf(map[string]any{"png": lastFrame, "error": err.Error()})
	}
	lastFrame = png
	return js.ValueOf(map[string]any{"png": png, "error": ""})
}

// goExportImage(documentJSON, fieldsJSON, format, [scale]) - render and
// return base64 image data in the given format.
func exportImage(this js.Value, args []js.Value) any {
	if len(args) < 3 {
		return errorValue("need documentJSON, fieldsJSON, format")
	}
	format, err := generator.ParseFormat(args[2].String())
	if err != nil {
		return errorValue("%v", err)
	}
	img, err := renderDoc(args[0].String(), args[1].String(), scaleArg(args, 3))
	if err != nil {
		return errorValue("render: %v", err)
	}
	data, err := encode(img, format)
	if err != nil {
		return errorValue("%v", err)
	}
	return js.ValueOf(data)
}

// goFields(documentJSON) - the document's field keys as text.
func fields(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorValue("need documentJSON")
	}
	doc, err := document.Parse([]byte(args[0].String()))
	if err != nil {
		return errorValue("%v", err)
	}
	return js.ValueOf(document.FormatFields(doc))
}

// goRegisterAsset(name, base64Data, mime) - store an asset, returning its id.
func registerAsset(this js.Value, args []js.Value) any {
	if len(args) < 3 {
		return errorValue("need name, base64Data, mime")
	}
	data, err := base64.StdEncoding.DecodeString(args[1].String())
	if err != nil {
		return errorValue("invalid base64: %v", err)
	}
	return js.ValueOf(engine.Assets().Add(args[0].String(), data, args[2].String()))
}

// goRemoveAsset(id) - remove an asset from Go memory.
func removeAsset(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorValue("need id")
	}
	id := args[0].String()
	engine.Assets().Remove(id)
	engine.Cache().Forget(id)
	engine.Cache().Forget("asset:" + id)
	return js.ValueOf("ok")
}

// goRegisterFont(family, base64Data) - add a font, returning its family.
func registerFont(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return errorValue("need family, base64Data")
	}
	data, err := base64.StdEncoding.DecodeString(args[1].String())
	if err != nil {
		return errorValue("invalid base64: %v", err)
	}
	family, err := engine.RegisterFont(args[0].String(), data)
	if err != nil {
		return errorValue("%v", err)
	}
	return js.ValueOf(family)
}

// goSetAvailableFonts(familiesJSON) - the families the page can display.
func setAvailableFonts(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorValue("need familiesJSON")
	}
	var families []string
	if err := json.Unmarshal([]byte(args[0].String()), &families); err != nil {
		return errorValue("parse families: %v", err)
	}
	engine.SetAvailableFonts(append(families, engine.Fonts().Families()...))
	return js.ValueOf("ok")
}
