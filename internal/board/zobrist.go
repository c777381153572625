package board

import (
	"strconv"
	"strings"

	"github.com/hailam/renaissance/internal/random"
)

// ZobristTable holds the 781 random keys used to fingerprint positions:
// 12x64 piece-square keys, side to move, 4 castling rights and 8 en-passant files.
//
// A table is created once per game lineage and shared by every clone.
// Hashes built from different tables are not comparable.
type ZobristTable struct {
	piece       [12][64]uint64
	blackToMove uint64
	castling    [4]uint64 // K, Q, k, q
	enPassant   [8]uint64
}

// NewZobristTable draws a fresh table from src. A nil src uses system entropy.
func NewZobristTable(src *random.Source) *ZobristTable {
	if src == nil {
		src = random.New(0)
	}
	zt := &ZobristTable{}
	for p := range zt.piece {
		for sq := range zt.piece[p] {
			zt.piece[p][sq] = src.Uint64()
		}
	}
	zt.blackToMove = src.Uint64()
	for i := range zt.castling {
		zt.castling[i] = src.Uint64()
	}
	for i := range zt.enPassant {
		zt.enPassant[i] = src.Uint64()
	}
	return zt
}

// Piece returns the key for piece p on sq.
func (zt *ZobristTable) Piece(p Piece, sq Square) uint64 {
	return zt.piece[p][sq]
}

// Castling returns the XOR of the keys of every right set in cr.
func (zt *ZobristTable) Castling(cr CastlingRights) uint64 {
	var h uint64
	for i := 0; i < 4; i++ {
		if cr&(1<<i) != 0 {
			h ^= zt.castling[i]
		}
	}
	return h
}

// EnPassant returns the key for an en-passant target on the given file.
func (zt *ZobristTable) EnPassant(file int) uint64 {
	return zt.enPassant[file]
}

// SideToMove returns the key XORed in when Black is to move.
func (zt *ZobristTable) SideToMove() uint64 {
	return zt.blackToMove
}

// ComputeHash computes the position's key from scratch.
func (p *Position) ComputeHash() uint64 {
	zt := p.zobrist
	var h uint64
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			bb := p.Pieces[c][pt]
			for bb != 0 {
				h ^= zt.Piece(NewPiece(pt, c), bb.PopLSB())
			}
		}
	}
	if p.SideToMove == Black {
		h ^= zt.blackToMove
	}
	h ^= zt.Castling(p.CastlingRights)
	if p.EnPassant != NoSquare {
		h ^= zt.enPassant[p.EnPassant.File()]
	}
	return h
}

// HashHex renders the position key as uppercase hexadecimal without
// prefix or zero padding. This is the key format of the weighted book.
func (p *Position) HashHex() string {
	return HashHex(p.Hash)
}

// HashHex renders h in book key format.
func HashHex(h uint64) string {
	return strings.ToUpper(strconv.FormatUint(h, 16))
}

// Zobrist returns the table shared by this position's lineage.
func (p *Position) Zobrist() *ZobristTable {
	return p.zobrist
}
