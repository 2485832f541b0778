package main

import (
	"fmt"
	"io"
	"os"
)

// handle 被打补丁的文件句柄
type handle interface {
	io.ReadWriteSeeker
	io.ReaderAt
	io.Closer
}

// openTarget 读写打开, 不创建也不截断
var openTarget = func(path string) (handle, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func NewPatcher(path string, entries []Entry, verify bool) *Patcher {
	p := &Patcher{
		path:    path,
		entries: entries,
		verify:  verify,
	}
	return p
}

type Patcher struct {
	// path specifies the file to be patched
	path string
	// entries are applied in order
	entries []Entry
	// verify reads the written bytes back
	verify bool

	target handle
	err    error
}

// Patch 主流程
func (p *Patcher) Patch() error {
	p.open()
	p.checkBounds()
	for _, e := range p.entries {
		p.seek(e)
		p.write(e)
	}
	p.verifyEntries()

	p.close()
	return p.err
}

func (p *Patcher) open() {
	t, err := openTarget(p.path)
	if err != nil {
		p.err = fmt.Errorf("%w: %s", ErrOpenFailed, err)
		return
	}
	p.target = t
}

// checkBounds 写入前确认每个偏移都在文件内, 否则 seek 越过末尾后 write 会扩展文件
func (p *Patcher) checkBounds() {
	if p.err != nil {
		return
	}

	size, err := p.target.Seek(0, io.SeekEnd)
	if err != nil {
		p.err = fmt.Errorf("%w: %s", ErrSeekFailed, err)
		return
	}
	for _, e := range p.entries {
		if e.Offset < 0 || e.Offset >= size {
			p.err = fmt.Errorf("%w: offset 0x%X beyond end of file (size %d)", ErrSeekFailed, e.Offset, size)
			return
		}
	}
}

func (p *Patcher) seek(e Entry) {
	if p.err != nil {
		return
	}

	offset, err := p.target.Seek(e.Offset, io.SeekStart)
	if err != nil {
		p.err = fmt.Errorf("%w: %s", ErrSeekFailed, err)
		return
	}
	if offset != e.Offset {
		p.err = fmt.Errorf("%w: cursor at 0x%X, want 0x%X", ErrSeekFailed, offset, e.Offset)
	}
}

func (p *Patcher) write(e Entry) {
	if p.err != nil {
		return
	}

	n, err := p.target.Write([]byte{e.Value})
	if err != nil {
		p.err = fmt.Errorf("%w: 0x%X: %s", ErrWriteFailed, e.Offset, err)
		return
	}
	if n != 1 {
		p.err = fmt.Errorf("%w: 0x%X: %s", ErrWriteFailed, e.Offset, io.ErrShortWrite)
	}
}

func (p *Patcher) verifyEntries() {
	if p.err != nil || !p.verify {
		return
	}

	buf := make([]byte, 1)
	for _, e := range p.entries {
		_, err := p.target.ReadAt(buf, e.Offset)
		if err != nil {
			p.err = fmt.Errorf("%w: 0x%X: %s", ErrVerifyFailed, e.Offset, err)
			return
		}
		if buf[0] != e.Value {
			p.err = fmt.Errorf("%w: 0x%X: got 0x%02X, want 0x%02X", ErrVerifyFailed, e.Offset, buf[0], e.Value)
			return
		}
	}
}

func (p *Patcher) close() {
	if p.target == nil {
		return
	}

	err := p.target.Close()
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("%w: %s", ErrWriteFailed, err)
	}
}
