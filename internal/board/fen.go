package board

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN parses a FEN string into a Position hashed with zt. A nil zt
// creates a fresh table. The clock fields are accepted but not tracked.
func ParseFEN(fen string, zt *ZobristTable) (*Position, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return nil, errors.Wrapf(ErrInvalidFEN, "need at least 4 fields, got %d", len(parts))
	}
	if zt == nil {
		zt = NewZobristTable(nil)
	}

	pos := &Position{EnPassant: NoSquare, zobrist: zt}

	if err := parsePiecePlacement(pos, parts[0]); err != nil {
		return nil, err
	}

	switch parts[1] {
	case "w":
		pos.SideToMove = White
	case "b":
		pos.SideToMove = Black
	default:
		return nil, errors.Wrapf(ErrInvalidFEN, "side to move %q", parts[1])
	}

	if err := parseCastlingRights(pos, parts[2]); err != nil {
		return nil, err
	}

	if parts[3] != "-" {
		sq, err := ParseSquare(parts[3])
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidFEN, "en passant square %q", parts[3])
		}
		pos.EnPassant = sq
	}

	for i := 4; i < len(parts) && i < 6; i++ {
		if _, err := strconv.Atoi(parts[i]); err != nil {
			return nil, errors.Wrapf(ErrInvalidFEN, "move counter %q", parts[i])
		}
	}

	if pos.Pieces[White][King].PopCount() != 1 || pos.Pieces[Black][King].PopCount() != 1 {
		return nil, errors.Wrap(ErrInvalidFEN, "each side needs exactly one king")
	}

	pos.Hash = pos.ComputeHash()
	return pos, nil
}

func parsePiecePlacement(pos *Position, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return errors.Wrapf(ErrInvalidFEN, "need 8 ranks, got %d", len(ranks))
	}

	for i, rankStr := range ranks {
		rank := 7 - i // FEN starts from rank 8
		file := 0
		for _, c := range rankStr {
			if file > 7 {
				return errors.Wrapf(ErrInvalidFEN, "too many squares in rank %d", rank+1)
			}
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}
			if c > 0x7F {
				return errors.Wrapf(ErrInvalidFEN, "piece character %q", c)
			}
			piece := PieceFromChar(byte(c))
			if piece == NoPiece {
				return errors.Wrapf(ErrInvalidFEN, "piece character %q", c)
			}
			pos.put(piece, NewSquare(file, rank))
			file++
		}
		if file != 8 {
			return errors.Wrapf(ErrInvalidFEN, "rank %d has %d squares", rank+1, file)
		}
	}
	return nil
}

func parseCastlingRights(pos *Position, castling string) error {
	if castling == "-" {
		return nil
	}
	for _, c := range castling {
		i := strings.IndexRune("KQkq", c)
		if i < 0 {
			return errors.Wrapf(ErrInvalidFEN, "castling character %q", c)
		}
		pos.CastlingRights |= 1 << i
	}
	return nil
}

// ToFEN returns the FEN of the position. The halfmove clock and fullmove
// number are always written as "0 1".
func (p *Position) ToFEN() string {
	var sb strings.Builder

	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			piece := p.PieceAt(NewSquare(file, rank))
			if piece == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(piece.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	if p.SideToMove == White {
		sb.WriteString(" w ")
	} else {
		sb.WriteString(" b ")
	}
	sb.WriteString(p.CastlingRights.String())
	sb.WriteByte(' ')
	sb.WriteString(p.EnPassant.String())
	sb.WriteString(" 0 1")

	return sb.String()
}
