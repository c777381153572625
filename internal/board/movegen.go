package board

import "github.com/pkg/errors"

// AttacksFrom returns the unfiltered destinations of the piece on sq:
// pushes and captures for pawns (en passant included), offsets for
// knights and kings, rays for sliders. Squares held by the mover's own
// pieces are excluded. Moves that expose the mover's king are not
// filtered out, and castling is never produced.
func (p *Position) AttacksFrom(sq Square) Bitboard {
	piece := p.PieceAt(sq)
	if piece == NoPiece {
		return 0
	}
	us := piece.Color()
	own := p.Occupied[us]

	switch piece.Type() {
	case Pawn:
		return p.pawnDestinations(sq, us)
	case Knight:
		return KnightAttacks(sq) &^ own
	case Bishop:
		return BishopAttacks(sq, p.AllOccupied) &^ own
	case Rook:
		return RookAttacks(sq, p.AllOccupied) &^ own
	case Queen:
		return QueenAttacks(sq, p.AllOccupied) &^ own
	case King:
		return KingAttacks(sq) &^ own
	}
	return 0
}

func (p *Position) pawnDestinations(sq Square, us Color) Bitboard {
	bb := SquareBB(sq)
	empty := ^p.AllOccupied

	forward, startRank, epRank := North, 1, 5
	if us == Black {
		forward, startRank, epRank = South, 6, 2
	}

	dests := bb.Shift(forward) & empty
	if dests != 0 && sq.Rank() == startRank {
		dests |= dests.Shift(forward) & empty
	}

	attacks := PawnAttacks(sq, us)
	dests |= attacks & p.Occupied[us.Other()]
	if p.EnPassant != NoSquare && p.EnPassant.Rank() == epRank {
		dests |= attacks & SquareBB(p.EnPassant)
	}
	return dests
}

// IsSquareAttacked reports whether any piece of color by attacks sq.
func (p *Position) IsSquareAttacked(sq Square, by Color) bool {
	if PawnAttacks(sq, by.Other())&p.Pieces[by][Pawn] != 0 {
		return true
	}
	if KnightAttacks(sq)&p.Pieces[by][Knight] != 0 {
		return true
	}
	if KingAttacks(sq)&p.Pieces[by][King] != 0 {
		return true
	}
	queens := p.Pieces[by][Queen]
	if BishopAttacks(sq, p.AllOccupied)&(p.Pieces[by][Bishop]|queens) != 0 {
		return true
	}
	return RookAttacks(sq, p.AllOccupied)&(p.Pieces[by][Rook]|queens) != 0
}

// IsInCheck reports whether c's king is attacked. A side without a king
// is never in check.
func (p *Position) IsInCheck(c Color) bool {
	ksq := p.KingSquare(c)
	if ksq == NoSquare {
		return false
	}
	return p.IsSquareAttacked(ksq, c.Other())
}

// LegalMovesFrom returns the legal moves of the piece on sq. An empty
// square or a piece of the side not to move yields no moves.
func (p *Position) LegalMovesFrom(sq Square) []Move {
	piece := p.PieceAt(sq)
	if piece == NoPiece || piece.Color() != p.SideToMove {
		return nil
	}
	return p.legalMovesFrom(sq, piece.Color())
}

func (p *Position) legalMovesFrom(sq Square, us Color) []Move {
	var moves []Move
	dests := p.AttacksFrom(sq)
	for dests != 0 {
		m := NewMove(sq, dests.PopLSB())
		child := p.Clone()
		child.MakeMove(m)
		if !child.IsInCheck(us) {
			moves = append(moves, m)
		}
	}
	return moves
}

// AllLegalMoves returns the legal moves of every piece of color c,
// whether or not c is the side to move.
func (p *Position) AllLegalMoves(c Color) []Move {
	var moves []Move
	pieces := p.Occupied[c]
	for pieces != 0 {
		moves = append(moves, p.legalMovesFrom(pieces.PopLSB(), c)...)
	}
	return moves
}

// LegalMoves returns the legal moves of the side to move.
func (p *Position) LegalMoves() []Move {
	return p.AllLegalMoves(p.SideToMove)
}

func (p *Position) hasLegalMove(c Color) bool {
	pieces := p.Occupied[c]
	for pieces != 0 {
		if len(p.legalMovesFrom(pieces.PopLSB(), c)) > 0 {
			return true
		}
	}
	return false
}

// IsCheckmate reports whether c is in check with no legal move.
func (p *Position) IsCheckmate(c Color) bool {
	return p.IsInCheck(c) && !p.hasLegalMove(c)
}

// IsStalemate reports whether c is not in check but has no legal move.
func (p *Position) IsStalemate(c Color) bool {
	return !p.IsInCheck(c) && !p.hasLegalMove(c)
}

// IsLegal reports whether m is a legal move for the side to move.
func (p *Position) IsLegal(m Move) bool {
	for _, lm := range p.LegalMovesFrom(m.From()) {
		if lm == m {
			return true
		}
	}
	return false
}

// MakeMove applies m without checking legality and without recording
// notation. The caller must only pass moves produced by the generator.
// Every side effect is committed: capture, en passant, castling-right
// revocation, promotion to queen, hash update and side flip.
func (p *Position) MakeMove(m Move) {
	from, to := m.From(), m.To()
	zt := p.zobrist

	piece := p.PieceAt(from)
	if piece == NoPiece {
		return
	}
	us := piece.Color()

	if p.EnPassant != NoSquare {
		p.Hash ^= zt.EnPassant(p.EnPassant.File())
	}

	captured := p.remove(to)
	if piece.Type() == Pawn && to == p.EnPassant && captured == NoPiece {
		p.remove(NewSquare(to.File(), from.Rank()))
	}

	p.remove(from)
	p.put(piece, to)

	p.EnPassant = NoSquare
	if piece.Type() == Pawn && (int(to)-int(from) == 16 || int(from)-int(to) == 16) {
		p.EnPassant = Square((int(from) + int(to)) / 2)
		p.Hash ^= zt.EnPassant(p.EnPassant.File())
	}

	old := p.CastlingRights
	switch piece.Type() {
	case King:
		if us == White {
			p.CastlingRights &^= WhiteKingSideCastle | WhiteQueenSideCastle
		} else {
			p.CastlingRights &^= BlackKingSideCastle | BlackQueenSideCastle
		}
	case Rook:
		p.CastlingRights &^= rightsLostAt[from]
	}
	if captured.Type() == Rook {
		p.CastlingRights &^= rightsLostAt[to]
	}
	// Only rights that flipped this move change the hash.
	p.Hash ^= zt.Castling(old ^ p.CastlingRights)

	if piece.Type() == Pawn && (to.Rank() == 0 || to.Rank() == 7) {
		p.remove(to)
		p.put(NewPiece(Queen, us), to)
	}

	p.SideToMove = p.SideToMove.Other()
	p.Hash ^= zt.SideToMove()
}

// Play validates m against the legal moves of the side to move, records
// it in both notations and applies it. An illegal move leaves the
// position untouched and returns ErrIllegalMove.
func (p *Position) Play(m Move) error {
	if !p.IsLegal(m) {
		return errors.Wrapf(ErrIllegalMove, "%s in %s", m, p.ToFEN())
	}
	san := p.ToSAN(m)
	p.history = p.history.push(m.String(), san)
	p.MakeMove(m)
	return nil
}

// PlayUCI parses a coordinate move and plays it.
func (p *Position) PlayUCI(s string) (Move, error) {
	m, err := ParseMove(s)
	if err != nil {
		return NoMove, errors.Wrap(ErrIllegalMove, err.Error())
	}
	return m, p.Play(m)
}

// Perft counts leaf nodes of the legal move tree to the given depth.
func (p *Position) Perft(depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := p.LegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		child := p.Clone()
		child.MakeMove(m)
		nodes += child.Perft(depth - 1)
	}
	return nodes
}
