package common

// WipeByteArray overwrites the buffer with zeros. Use it to scrub passwords
// from memory once they have been handed to the backend.
func WipeByteArray(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}
