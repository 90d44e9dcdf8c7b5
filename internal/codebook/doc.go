// Package codebook holds the Labour Force Survey code tables used to decode
// numeric survey codes into human-readable labels.
//
// Each table is a named, exported value so it can be tested on its own and
// shared by every component that decodes survey data:
//
//	label, ok := codebook.Province.Decode(35) // "Ontario", true
//
// Decoding a raw cell returns an Outcome that tells a known code apart from
// an unknown one and from a missing cell:
//
//	out := codebook.Sex.DecodeValue("3")
//	out.Status == codebook.StatusUnknown
package codebook
