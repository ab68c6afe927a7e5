package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Лексические
	LexInfo        Code = 1000
	LexStrayByte   Code = 1001
	LexIntOverflow Code = 1002

	// I/O
	IOLoadFileError Code = 4001

	// Кэш токенов
	ObsCacheCorrupt Code = 6001
	ObsCacheWrite   Code = 6002
)

var codeDescription = map[Code]string{
	UnknownCode:     "Unknown error",
	LexInfo:         "Lexical information",
	LexStrayByte:    "Byte not recognized by the lexer",
	LexIntOverflow:  "Integer literal overflows 64 bits",
	IOLoadFileError: "Failed to load file",
	ObsCacheCorrupt: "Token cache entry is unreadable",
	ObsCacheWrite:   "Token cache entry could not be written",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
