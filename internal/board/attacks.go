package board

// Pre-computed attack tables for the leaping pieces.
var (
	knightAttacks [64]Bitboard
	kingAttacks   [64]Bitboard
	pawnAttacks   [2][64]Bitboard // [Color][Square], diagonal captures only
)

var knightOffsets = [8][2]int{
	{1, 2}, {2, 1}, {2, -1}, {1, -2},
	{-1, -2}, {-2, -1}, {-2, 1}, {-1, 2},
}

func init() {
	for sq := A1; sq <= H8; sq++ {
		bb := SquareBB(sq)

		for _, d := range queenDirections {
			kingAttacks[sq] |= bb.Shift(d)
		}

		for _, off := range knightOffsets {
			f, r := sq.File()+off[0], sq.Rank()+off[1]
			if f >= 0 && f < 8 && r >= 0 && r < 8 {
				knightAttacks[sq] |= SquareBB(NewSquare(f, r))
			}
		}

		pawnAttacks[White][sq] = bb.Shift(NorthEast) | bb.Shift(NorthWest)
		pawnAttacks[Black][sq] = bb.Shift(SouthEast) | bb.Shift(SouthWest)
	}
}

// KnightAttacks returns the squares a knight on sq attacks.
func KnightAttacks(sq Square) Bitboard {
	return knightAttacks[sq]
}

// KingAttacks returns the squares a king on sq attacks.
func KingAttacks(sq Square) Bitboard {
	return kingAttacks[sq]
}

// PawnAttacks returns the diagonal capture squares of a c pawn on sq.
func PawnAttacks(sq Square, c Color) Bitboard {
	return pawnAttacks[c][sq]
}

// slidingAttacks casts a ray from sq in each direction, one step at a
// time, stopping on (and including) the first occupied square.
func slidingAttacks(sq Square, occupied Bitboard, dirs []Direction) Bitboard {
	var attacks Bitboard
	for _, d := range dirs {
		ray := SquareBB(sq)
		for {
			ray = ray.Shift(d)
			if ray == 0 {
				break
			}
			attacks |= ray
			if ray&occupied != 0 {
				break
			}
		}
	}
	return attacks
}

// RookAttacks returns rook attacks from sq given the board occupancy.
func RookAttacks(sq Square, occupied Bitboard) Bitboard {
	return slidingAttacks(sq, occupied, rookDirections)
}

// BishopAttacks returns bishop attacks from sq given the board occupancy.
func BishopAttacks(sq Square, occupied Bitboard) Bitboard {
	return slidingAttacks(sq, occupied, bishopDirections)
}

// QueenAttacks returns queen attacks from sq given the board occupancy.
func QueenAttacks(sq Square, occupied Bitboard) Bitboard {
	return slidingAttacks(sq, occupied, queenDirections)
}
