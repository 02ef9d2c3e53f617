package domain

import "github.com/awnumar/memguard"

// Zero overwrites every buffer with zeros. Nil and empty buffers are ignored.
func Zero(buffers ...[]byte) {
	for _, b := range buffers {
		if len(b) == 0 {
			continue
		}
		memguard.WipeBytes(b)
	}
}
