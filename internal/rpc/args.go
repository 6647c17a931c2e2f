package rpc

// ArgString decodes a msgpack string argument. Editors send strings either
// as str or as bin depending on their encoding settings.
func ArgString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	default:
		return "", false
	}
}

// ArgBool decodes a boolean argument. Vimscript callers commonly pass 0/1,
// so integers are accepted as well.
func ArgBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case int:
		return b != 0, true
	case int8:
		return b != 0, true
	case int16:
		return b != 0, true
	case int32:
		return b != 0, true
	case int64:
		return b != 0, true
	case uint:
		return b != 0, true
	case uint8:
		return b != 0, true
	case uint16:
		return b != 0, true
	case uint32:
		return b != 0, true
	case uint64:
		return b != 0, true
	default:
		return false, false
	}
}

// Arg returns args[i], or nil when i is out of range.
func Arg(args []any, i int) any {
	if i < 0 || i >= len(args) {
		return nil
	}
	return args[i]
}
