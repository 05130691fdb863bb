package pdftext

import (
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/rs/zerolog/log"
)

// maxFormDepth caps Form XObject nesting, which also stops forms that draw
// themselves.
const maxFormDepth = 8

// resources is the part of a /Resources dictionary that affects text.
type resources struct {
	fonts map[string]*font
	forms map[string]*form
}

// form is a Form XObject: a content stream with its own optional resources.
type form struct {
	content []byte
	// res is nil when the form inherits the resources of its caller.
	res *resources
}

func (r *resources) font(name string) *font {
	if r == nil {
		return nil
	}
	return r.fonts[name]
}

func (r *resources) form(name string) *form {
	if r == nil {
		return nil
	}
	return r.forms[name]
}

// loadResources resolves fonts and Form XObjects of a resource dictionary.
// Entries that cannot be resolved are logged and left out; text shown with
// an unknown font falls back to WinAnsi decoding.
func loadResources(ctx *model.Context, d types.Dict, depth int) *resources {
	res := &resources{fonts: map[string]*font{}, forms: map[string]*form{}}
	if d == nil {
		return res
	}

	if o, found := d.Find("Font"); found {
		fd, err := ctx.DereferenceDict(o)
		if err != nil {
			log.Debug().Err(err).Msg("pdftext: font resources")
		}
		for name, fo := range fd {
			fontDict, err := ctx.DereferenceDict(fo)
			if err != nil || fontDict == nil {
				log.Debug().Err(err).Str("font", name).Msg("pdftext: skip font")
				continue
			}
			res.fonts[name] = loadFont(ctx, fontDict)
		}
	}

	if depth >= maxFormDepth {
		return res
	}
	if o, found := d.Find("XObject"); found {
		xd, err := ctx.DereferenceDict(o)
		if err != nil {
			log.Debug().Err(err).Msg("pdftext: xobject resources")
		}
		for name, xo := range xd {
			sd, _, err := ctx.DereferenceStreamDict(xo)
			if err != nil || sd == nil {
				continue
			}
			if st := sd.Subtype(); st == nil || *st != "Form" {
				continue
			}
			if err := sd.Decode(); err != nil {
				log.Debug().Err(err).Str("xobject", name).Msg("pdftext: skip form")
				continue
			}
			f := &form{content: sd.Content}
			if ro, found := sd.Find("Resources"); found {
				if rd, err := ctx.DereferenceDict(ro); err == nil && rd != nil {
					f.res = loadResources(ctx, rd, depth+1)
				}
			}
			res.forms[name] = f
		}
	}
	return res
}

func loadFont(ctx *model.Context, d types.Dict) *font {
	f := &font{}
	if st := d.Subtype(); st != nil && *st == "Type0" {
		f.twoByte = true
	}

	if o, found := d.Find("ToUnicode"); found {
		sd, _, err := ctx.DereferenceStreamDict(o)
		if err == nil && sd != nil {
			if err := sd.Decode(); err == nil {
				f.toUnicode = parseCMap(sd.Content)
			} else {
				log.Debug().Err(err).Msg("pdftext: ToUnicode stream")
			}
		}
	}

	if f.twoByte {
		return f
	}
	o, found := d.Find("Encoding")
	if !found {
		return f
	}
	enc, err := ctx.Dereference(o)
	if err != nil {
		return f
	}
	switch enc := enc.(type) {
	case types.Name:
		f.base = baseEncoding(enc.Value())
	case types.Dict:
		if be := enc.NameEntry("BaseEncoding"); be != nil {
			f.base = baseEncoding(*be)
		}
		if o, found := enc.Find("Differences"); found {
			if a, err := ctx.DereferenceArray(o); err == nil {
				f.differences = differences(a)
			}
		}
	}
	return f
}

// differences reads [code /name /name code /name ...].
func differences(a types.Array) map[byte]string {
	m := make(map[byte]string)
	code := 0
	for _, o := range a {
		switch v := o.(type) {
		case types.Integer:
			code = v.Value()
		case types.Float:
			code = int(v.Value())
		case types.Name:
			if code >= 0 && code <= 0xFF {
				m[byte(code)] = v.Value()
			}
			code++
		}
	}
	return m
}
