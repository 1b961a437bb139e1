// Package family defines genealogical member records and the relationship
// index the layout engine is built on.
//
// # Members
//
// A [Member] is one person: identity, display fields, a generation tier and
// nullable references to a father, a mother and a spouse. References are plain
// [ID] values; the empty ID means "no reference". Ids decode from JSON strings
// or numbers, so both of these are accepted:
//
//	{"id": 1, "name": "Karl", "generation": 1, "spouse_id": 2}
//	{"id": "1", "name": "Karl", "generation": 1, "spouse_id": "2"}
//
// # Relationship Index
//
// [NewIndex] turns a flat member list into constant-time lookups: member by
// id, children of an id (as father or mother), spouse of an id, and the set of
// roots (members without a resolvable parent).
//
// The index never fails. Input problems are recovered and recorded:
//
//   - A reference to a missing id is treated as absent.
//   - A self reference (father_id == id) is treated as absent.
//   - A duplicate id keeps the last record.
//
// Each recovered problem is available from [Index.Problems] as an error
// carrying errors.ErrCodeReference, so callers can log them.
//
// Spouse links are honoured from the referencing side only: if A names B as
// spouse but B names nobody, Spouse(A) is B and Spouse(B) is absent.
// [Index.IsMutualSpouse] reports whether both sides agree.
//
// Layout pairing uses [Index.Partner], which is symmetric. Mutual spouses are
// always partners. A one-sided link makes partners only when the target has
// no spouse_id of its own, so it never splits a couple.
//
// # Ordering
//
// Ids are ordered with [CompareIDs]: numeric ids compare numerically ("2" <
// "10"), everything else lexicographically. Children are ordered by
// child_order with missing values last, ties broken by id.
package family
