// Package ledger implements the append-only journal of a game session.
//
// # Core Components
//
// Journal: an append-only log of the mutations accepted by the session
// controller, hash chained for tamper detection.
//
// Block: a single accepted mutation with the message that caused it, the turn
// it happened in and a link to the previous block.
//
// Signer: the schnorr key pair of the server. Every block hash is signed, so
// an exported chain can be checked by anyone holding the public key.
//
// # Security Properties
//
// The journal provides:
//   - Verifiability: Verify and VerifyChain check the whole chain at any time
//   - Auditability: complete history of logins, deals, plays and discards
//   - Tamper detection: any modification breaks the hash chain or a signature
//
// # Usage
//
// Create a journal with the session id, then append a block every time the
// session accepts a mutation.
package ledger
