package lfile

import (
	"encoding/binary"

	"github.com/zzenonn/go-dd/internal/ddcore"
)

const (
	pointerSize   = 8
	arcSize       = 16
	nodeSize      = 24
	levelInfoSize = 16
)

func encodePointer(p ddcore.Pointer, buf []byte) {
	binary.LittleEndian.PutUint64(buf, p.Bits())
}

func decodePointer(buf []byte) ddcore.Pointer {
	return ddcore.FromBits(binary.LittleEndian.Uint64(buf))
}

func encodeArc(a ddcore.Arc, buf []byte) {
	encodePointer(a.Source, buf[0:8])
	encodePointer(a.Target, buf[8:16])
}

func decodeArc(buf []byte) ddcore.Arc {
	return ddcore.Arc{
		Source: decodePointer(buf[0:8]),
		Target: decodePointer(buf[8:16]),
	}
}

func encodeNode(n ddcore.Node, buf []byte) {
	encodePointer(n.UID.Pointer(), buf[0:8])
	encodePointer(n.Low, buf[8:16])
	encodePointer(n.High, buf[16:24])
}

func decodeNode(buf []byte) ddcore.Node {
	return ddcore.Node{
		UID:  ddcore.NewUID(decodePointer(buf[0:8])),
		Low:  decodePointer(buf[8:16]),
		High: decodePointer(buf[16:24]),
	}
}

func encodeLevelInfo(l LevelInfo, buf []byte) {
	binary.LittleEndian.PutUint64(buf[0:8], uint64(l.Label))
	binary.LittleEndian.PutUint64(buf[8:16], l.Width)
}

func decodeLevelInfo(buf []byte) LevelInfo {
	return LevelInfo{
		Label: uint32(binary.LittleEndian.Uint64(buf[0:8])),
		Width: binary.LittleEndian.Uint64(buf[8:16]),
	}
}
