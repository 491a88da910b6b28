package birch

import (
	"encoding/json"
	"fmt"
)

// AtlasPage is one texture page of an atlas, already uploaded by the caller.
type AtlasPage struct {
	ID            TextureID
	Width, Height int
}

// Atlas is a set of named frames spread over one or more texture pages.
type Atlas struct {
	// Pages are the textures registered for each atlas page, in page order.
	Pages  []*Texture
	frames map[string]*Frame
	// missing is returned for unknown frame names.
	missing *Frame
}

// Frame returns the named frame. Unknown names log a warning and return the
// magenta placeholder frame.
func (a *Atlas) Frame(name string) *Frame {
	if f, ok := a.frames[name]; ok {
		return f
	}
	Logger().Warn("atlas frame not found, using placeholder", "frame", name)
	return a.missing
}

// Has reports whether the atlas contains a frame called name.
func (a *Atlas) Has(name string) bool {
	_, ok := a.frames[name]
	return ok
}

// Len returns the number of frames.
func (a *Atlas) Len() int {
	return len(a.frames)
}

// LoadAtlas parses TexturePacker JSON and registers one texture per page
// under key (page 0) and key#N (later pages). Supports both the hash format
// (single "frames" object) and the multi-page array format ("textures").
func (tm *TextureManager) LoadAtlas(key string, jsonData []byte, pages []AtlasPage) (*Atlas, error) {
	var probe struct {
		Frames   json.RawMessage `json:"frames"`
		Textures json.RawMessage `json:"textures"`
	}
	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, fmt.Errorf("birch: failed to parse atlas JSON: %w", err)
	}
	if probe.Textures == nil && probe.Frames == nil {
		return nil, fmt.Errorf("birch: atlas JSON has neither \"frames\" nor \"textures\" key")
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("birch: atlas %q has no pages", key)
	}

	atlas := &Atlas{
		frames:  make(map[string]*Frame),
		missing: tm.Missing().Base(),
	}
	for i, page := range pages {
		pageKey := key
		if i > 0 {
			pageKey = fmt.Sprintf("%s#%d", key, i)
		}
		t, err := tm.Add(pageKey, page.ID, page.Width, page.Height)
		if err != nil {
			return nil, err
		}
		atlas.Pages = append(atlas.Pages, t)
	}

	if probe.Textures != nil {
		var textures []jsonTexturePage
		if err := json.Unmarshal(probe.Textures, &textures); err != nil {
			return nil, fmt.Errorf("birch: failed to parse atlas textures array: %w", err)
		}
		for i, tex := range textures {
			if i >= len(atlas.Pages) {
				return nil, fmt.Errorf("birch: atlas %q references page %d but only %d pages were given", key, i, len(atlas.Pages))
			}
			for name, f := range tex.Frames {
				atlas.frames[name] = addJSONFrame(atlas.Pages[i], name, f)
			}
		}
		return atlas, nil
	}

	var frames map[string]jsonFrame
	if err := json.Unmarshal(probe.Frames, &frames); err != nil {
		return nil, fmt.Errorf("birch: failed to parse atlas frames: %w", err)
	}
	for name, f := range frames {
		atlas.frames[name] = addJSONFrame(atlas.Pages[0], name, f)
	}
	return atlas, nil
}

// --- JSON structure types ---

type jsonRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type jsonSize struct {
	W int `json:"w"`
	H int `json:"h"`
}

type jsonPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type jsonFrame struct {
	Frame            jsonRect   `json:"frame"`
	Rotated          bool       `json:"rotated"`
	Trimmed          bool       `json:"trimmed"`
	SpriteSourceSize jsonRect   `json:"spriteSourceSize"`
	SourceSize       jsonSize   `json:"sourceSize"`
	Pivot            *jsonPoint `json:"pivot"`
}

type jsonTexturePage struct {
	Image  string               `json:"image"`
	Frames map[string]jsonFrame `json:"frames"`
}

func addJSONFrame(t *Texture, name string, jf jsonFrame) *Frame {
	f := t.AddFrame(name,
		float64(jf.Frame.X), float64(jf.Frame.Y),
		float64(jf.Frame.W), float64(jf.Frame.H))
	if jf.Trimmed {
		f.SetTrim(float64(jf.SourceSize.W), float64(jf.SourceSize.H),
			float64(jf.SpriteSourceSize.X), float64(jf.SpriteSourceSize.Y))
	}
	if jf.Rotated {
		f.SetRotated(true)
	}
	if jf.Pivot != nil {
		f.SetPivot(jf.Pivot.X, jf.Pivot.Y)
	}
	return f
}
