package template

// Binding sources (CLI flags, query strings, JSON bodies) turn raw
// textual input into typed values with the functions below, then hand
// the finished Context to Render.

// FromArgString parses a single textual value against an inner type.
// Argument strings are not wrapped in quotes: str accepts the string
// as-is, num requires the whole string to be a float literal, and raw
// requires the whole string to match the #...# fragment grammar.
func FromArgString(ty InnerType, arg string) (ParamValue, error) {
	switch ty {
	case InnerString:
		return Str(arg), nil
	case InnerNumber:
		text, width := floatPrefix(arg)
		if width != len(arg) || width == 0 {
			return nil, &InvalidArgValueError{Value: arg, Type: ty}
		}
		v, err := scanNumber(&scanner{src: text})
		if err != nil {
			return nil, &InvalidArgValueError{Value: arg, Type: ty}
		}
		return v, nil
	default:
		s := &scanner{src: arg}
		v, err := scanRawFragment(s)
		if err != nil || !s.eof() {
			return nil, &InvalidArgValueError{Value: arg, Type: ty}
		}
		return v, nil
	}
}

// BindParam converts the raw strings supplied for one parameter into
// a typed value. Scalars require exactly one value; arrays accept any
// number, each parsed against the inner type.
func BindParam(p Param, raws []string) (ParamValue, error) {
	if p.Type.IsArray {
		arr := make(Array, 0, len(raws))
		for _, raw := range raws {
			v, err := FromArgString(p.Type.Inner, raw)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	}
	if len(raws) != 1 {
		return nil, &ExpectSingleValueError{Name: p.Name, Count: len(raws)}
	}
	return FromArgString(p.Type.Inner, raws[0])
}

// BuildContext assembles a render context: for each parameter, the
// supplied values if any, else the declared default, else a
// required-parameter error scoped to that name.
func BuildContext(params []Param, supplied map[string][]string) (Context, error) {
	ctx := make(Context, len(params))
	for _, p := range params {
		raws := supplied[p.Name]
		if len(raws) == 0 {
			if p.Default == nil {
				return nil, &RequiredParamError{Name: p.Name}
			}
			ctx[p.Name] = p.Default
			continue
		}
		val, err := BindParam(p, raws)
		if err != nil {
			return nil, err
		}
		ctx[p.Name] = val
	}
	return ctx, nil
}
