package games

// The impostor family of games: one player per round lacks the secret content
// the others share, and has to bluff their way through discussion and a vote.

// Modes:
// - secret_word: everyone but the impostor sees the same word
// - location: everyone but the impostor sees a location plus a personal cover role
// - undercover: two near-identical words; the impostor unknowingly holds the odd one
// - category: everyone sees category+item, the impostor only the category
// - questions: everyone answers the same question except the impostor, who
//   unknowingly answers a slightly different one

// Round flow:
// - Host picks a mode and starts the round; roles and content are dealt secretly
// - Optional: host reveals a shared random speaking order
// - Host opens voting; each player votes once for who they think is the impostor
// - Host reveals the result: vote counts, most voted, and the impostor's identity
// - Host returns the room to the lobby; players who joined mid-round are admitted

// Implementation details:
// - One websocket per client, one hub goroutine per room
// - Players are identified by a server-minted id they replay on reconnect
// - Disconnected players keep their seat for a grace window before removal
