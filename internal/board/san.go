package board

import "strings"

// ToSAN renders m in short algebraic form: piece letter, capture marker
// (pawn captures lead with the origin file), destination and a check or
// mate suffix. No disambiguation is added and castling never appears.
// m is assumed legal in p.
func (p *Position) ToSAN(m Move) string {
	from, to := m.From(), m.To()
	piece := p.PieceAt(from)
	if piece == NoPiece {
		return m.String()
	}

	var sb strings.Builder
	pt := piece.Type()
	sb.WriteString(pt.Letter())

	capture := !p.IsEmpty(to) || (pt == Pawn && to == p.EnPassant)
	if capture {
		if pt == Pawn {
			sb.WriteByte(byte('a' + from.File()))
		}
		sb.WriteByte('x')
	}
	sb.WriteString(to.String())

	child := p.Clone()
	child.MakeMove(m)
	them := piece.Color().Other()
	if child.IsCheckmate(them) {
		sb.WriteByte('#')
	} else if child.IsInCheck(them) {
		sb.WriteByte('+')
	}
	return sb.String()
}
