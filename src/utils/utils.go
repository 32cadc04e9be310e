package utils

import "unsafe"

func StringPointer(s string) *string {
	return &s
}

// B2S converts a byte slice to a string without copying. The slice must not
// be modified afterwards.
func B2S(b []byte) string {
	return *(*string)(unsafe.Pointer(&b))
}
