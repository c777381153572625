package board

import (
	"fmt"
	"strings"

	"github.com/hailam/renaissance/internal/random"
)

// CastlingRights represents the available castling options. Rights are
// only ever cleared; no castling move is generated.
type CastlingRights uint8

const (
	WhiteKingSideCastle  CastlingRights = 1 << iota // K
	WhiteQueenSideCastle                            // Q
	BlackKingSideCastle                             // k
	BlackQueenSideCastle                            // q
	NoCastling           CastlingRights = 0
	AllCastling          CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// String returns the FEN castling field.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	var sb strings.Builder
	for i, c := range "KQkq" {
		if cr&(1<<i) != 0 {
			sb.WriteRune(c)
		}
	}
	return sb.String()
}

// rightsLostAt maps a corner to the right that disappears when a rook
// leaves or is captured there.
var rightsLostAt = map[Square]CastlingRights{
	A1: WhiteQueenSideCastle,
	H1: WhiteKingSideCastle,
	A8: BlackQueenSideCastle,
	H8: BlackKingSideCastle,
}

// Position represents a complete chess position.
type Position struct {
	// Piece bitboards: [Color][PieceType]
	Pieces [2][6]Bitboard

	// Occupancy bitboards
	Occupied    [2]Bitboard
	AllOccupied Bitboard

	SideToMove     Color
	CastlingRights CastlingRights
	EnPassant      Square // NoSquare if none

	// Hash is maintained incrementally and always equals ComputeHash().
	Hash uint64

	zobrist *ZobristTable
	history *historyNode
}

// NewPosition creates the starting position with a fresh zobrist table.
func NewPosition() *Position {
	return NewPositionWithTable(NewZobristTable(nil))
}

// NewSeededPosition creates the starting position whose zobrist table is
// drawn from src.
func NewSeededPosition(src *random.Source) *Position {
	return NewPositionWithTable(NewZobristTable(src))
}

// NewPositionWithTable creates the starting position using zt.
func NewPositionWithTable(zt *ZobristTable) *Position {
	pos, err := ParseFEN(StartFEN, zt)
	if err != nil {
		panic(err)
	}
	return pos
}

// Clone returns an independent copy. The zobrist table and the recorded
// history are shared.
func (p *Position) Clone() *Position {
	c := *p
	return &c
}

// PieceAt returns the piece at the given square, or NoPiece if empty.
func (p *Position) PieceAt(sq Square) Piece {
	bb := SquareBB(sq)
	if p.AllOccupied&bb == 0 {
		return NoPiece
	}
	c := White
	if p.Occupied[Black]&bb != 0 {
		c = Black
	}
	for pt := Pawn; pt <= King; pt++ {
		if p.Pieces[c][pt]&bb != 0 {
			return NewPiece(pt, c)
		}
	}
	return NoPiece
}

// IsEmpty returns true if the square is empty.
func (p *Position) IsEmpty(sq Square) bool {
	return p.AllOccupied&SquareBB(sq) == 0
}

// PieceCount returns the number of pieces on the board, kings included.
func (p *Position) PieceCount() int {
	return p.AllOccupied.PopCount()
}

// KingSquare returns the square of c's king, or NoSquare.
func (p *Position) KingSquare(c Color) Square {
	return p.Pieces[c][King].LSB()
}

// put places a piece on an empty square and updates the hash.
func (p *Position) put(piece Piece, sq Square) {
	c, pt := piece.Color(), piece.Type()
	bb := SquareBB(sq)
	p.Pieces[c][pt] |= bb
	p.Occupied[c] |= bb
	p.AllOccupied |= bb
	p.Hash ^= p.zobrist.Piece(piece, sq)
}

// remove clears sq and updates the hash. It returns the removed piece.
func (p *Position) remove(sq Square) Piece {
	piece := p.PieceAt(sq)
	if piece == NoPiece {
		return NoPiece
	}
	c, pt := piece.Color(), piece.Type()
	bb := SquareBB(sq)
	p.Pieces[c][pt] &^= bb
	p.Occupied[c] &^= bb
	p.AllOccupied &^= bb
	p.Hash ^= p.zobrist.Piece(piece, sq)
	return piece
}

// String returns a visual representation of the position.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d  ", rank+1)
		for file := 0; file < 8; file++ {
			piece := p.PieceAt(NewSquare(file, rank))
			if piece == NoPiece {
				sb.WriteString(". ")
			} else {
				sb.WriteString(piece.String() + " ")
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n   a b c d e f g h\n\n")
	fmt.Fprintf(&sb, "Side to move: %s\n", p.SideToMove)
	fmt.Fprintf(&sb, "Castling: %s\n", p.CastlingRights)
	fmt.Fprintf(&sb, "En passant: %s\n", p.EnPassant)
	fmt.Fprintf(&sb, "Hash: %s\n", p.HashHex())
	return sb.String()
}
