//go:build windows && !appengine

package maxminddb

// The Windows mapping strategy is borrowed from mmap-go.
//
// Copyright 2011 Evan Shaw. All rights reserved.
// Used under the terms of mmap-go's BSD-style license.

import (
	"errors"
	"os"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Unlike the POSIX mmap, unmapping on Windows needs the file-mapping handle
// as well as the view's base address, so mmap records the handle for each
// outstanding view here and munmap retrieves it.
var (
	handleLock sync.Mutex
	handleMap  = map[uintptr]windows.Handle{}
)

func mmap(fd, length int) ([]byte, error) {
	h, errno := windows.CreateFileMapping(windows.Handle(fd), nil,
		windows.PAGE_READONLY, 0, uint32(length), nil)
	if h == 0 {
		return nil, os.NewSyscallError("CreateFileMapping", errno)
	}

	addr, errno := windows.MapViewOfFile(h, windows.FILE_MAP_READ, 0, 0, uintptr(length))
	if addr == 0 {
		_ = windows.CloseHandle(h)
		return nil, os.NewSyscallError("MapViewOfFile", errno)
	}

	handleLock.Lock()
	handleMap[addr] = h
	handleLock.Unlock()

	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), length), nil
}

func munmap(b []byte) error {
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(b)))

	if err := windows.UnmapViewOfFile(addr); err != nil {
		return os.NewSyscallError("UnmapViewOfFile", err)
	}

	handleLock.Lock()
	defer handleLock.Unlock()
	h, ok := handleMap[addr]
	if !ok {
		return errors.New("unknown memory map address")
	}
	delete(handleMap, addr)

	return os.NewSyscallError("CloseHandle", windows.CloseHandle(h))
}
