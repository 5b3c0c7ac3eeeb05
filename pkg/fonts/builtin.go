// builtin.go - Builtin Go font families and generic aliases.
package fonts

import (
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomediumitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
	"golang.org/x/image/font/gofont/gosmallcapsitalic"
)

var builtins = []struct {
	family string
	weight int
	italic bool
	ttf    []byte
}{
	{"Go", 400, false, goregular.TTF},
	{"Go", 400, true, goitalic.TTF},
	{"Go", 500, false, gomedium.TTF},
	{"Go", 500, true, gomediumitalic.TTF},
	{"Go", 700, false, gobold.TTF},
	{"Go", 700, true, gobolditalic.TTF},
	{"Go Mono", 400, false, gomono.TTF},
	{"Go Mono", 400, true, gomonoitalic.TTF},
	{"Go Mono", 700, false, gomonobold.TTF},
	{"Go Mono", 700, true, gomonobolditalic.TTF},
	{"Go Smallcaps", 400, false, gosmallcaps.TTF},
	{"Go Smallcaps", 400, true, gosmallcapsitalic.TTF},
}

// genericAliases maps CSS generic families onto the builtin fonts.
var genericAliases = map[string]string{
	"sans-serif":    "Go",
	"serif":         "Go",
	"system-ui":     "Go",
	"ui-sans-serif": "Go",
	"monospace":     "Go Mono",
	"ui-monospace":  "Go Mono",
}
