//go:build !unix

package storage

func freeSpace(path string) uint64 {
	return 0
}
