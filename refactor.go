package main

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// MessagePrefix 成功提示
	MessagePrefix = "Патч применён"
)

// Entry 一处补丁: 绝对偏移与替换后的字节
type Entry struct {
	Offset int64
	Value  byte
}

func (e Entry) String() string {
	return fmt.Sprintf("0x%X=0x%02X", e.Offset, e.Value)
}

var (
	// DefaultEntries 按顺序写入
	DefaultEntries = []Entry{
		{Offset: 0x159E, Value: 0xEB},
		{Offset: 0x159F, Value: 0x00},
	}
)

var (
	ErrMissingArgument = errors.New("missing argument: path to binary file")
	ErrOpenFailed      = errors.New("open failed")
	ErrSeekFailed      = errors.New("seek failed")
	ErrWriteFailed     = errors.New("write failed")
	ErrVerifyFailed    = errors.New("verify failed")
	ErrPatchFailed     = errors.New("patch failed")
)

// Message 生成确认信息, 例如 `Патч применён: 0x159E=0xEB, 0x159F=0x00`
func Message(entries []Entry) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, e.String())
	}
	return fmt.Sprintf("%s: %s", MessagePrefix, strings.Join(parts, ", "))
}
