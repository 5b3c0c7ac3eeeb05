// example.go - Sample document and fields for `stencilkit init`.
package document

// ExampleJSON returns a sample document.json and fields.json.
func ExampleJSON() (documentJSON, fieldsJSON string) {
	documentJSON = `{
  "meta": {
    "name": "Summer Sale",
    "version": "1.0",
    "author": "stencilkit",
    "description": "A starter post with a gradient, a photo, a headline and a badge"
  },
  "canvas": { "preset": "instagram_post", "backgroundColor": "#ffffff" },
  "layers": [
    {
      "id": "bg",
      "type": "gradient",
      "order": 0,
      "position": { "x": 0, "y": 0 },
      "size": { "width": 1080, "height": 1350 },
      "style": {
        "gradientType": "linear",
        "angle": 180,
        "colorStops": [
          { "position": 0, "color": "#ff7e5f" },
          { "position": 1, "color": "#feb47b" }
        ]
      }
    },
    {
      "id": "photo",
      "type": "image",
      "order": 1,
      "position": { "x": 90, "y": 380 },
      "size": { "width": 900, "height": 700 },
      "style": {
        "objectFit": "cover",
        "borderWidth": 6,
        "borderColor": "#ffffff",
        "borderRadius": 24,
        "shadowColor": "rgba(0,0,0,0.35)",
        "shadowBlur": 24,
        "shadowOffsetY": 12
      }
    },
    {
      "id": "headline",
      "type": "text",
      "order": 2,
      "position": { "x": 90, "y": 100 },
      "size": { "width": 900, "height": 200 },
      "style": {
        "fontFamily": "Go",
        "fontSize": 96,
        "fontWeight": "bold",
        "color": "#ffffff",
        "textAlign": "center",
        "lineHeight": 1.1,
        "textTransform": "uppercase"
      },
      "content": "Summer Sale",
      "textboxConfig": {
        "textMode": "auto-resize-multi",
        "autoWrap": { "breakMode": "word" },
        "autoResize": { "minFontSize": 24, "maxFontSize": 120 },
        "anchor": "middle"
      }
    },
    {
      "id": "badge",
      "type": "element",
      "order": 3,
      "position": { "x": 760, "y": 1140 },
      "size": { "width": 240, "height": 120 },
      "rotation": -8,
      "style": {
        "backgroundColor": "#1a1a2e",
        "borderWidth": 4,
        "borderColor": "#ffffff",
        "borderRadius": 20
      }
    },
    {
      "id": "price",
      "type": "text",
      "order": 4,
      "position": { "x": 760, "y": 1140 },
      "size": { "width": 240, "height": 120 },
      "rotation": -8,
      "style": { "fontSize": 56, "color": "#ffffff", "textAlign": "center" },
      "content": "-50%",
      "textboxConfig": {
        "textMode": "auto-resize-single",
        "autoResize": { "minFontSize": 16, "maxFontSize": 64 },
        "anchor": "middle"
      }
    }
  ]
}`

	fieldsJSON = `{
  "headline": "Autumn Clearance",
  "headline_color": "#fff4e0",
  "price": "-70%",
  "badge_backgroundColor": "#c0392b"
}`
	return
}
