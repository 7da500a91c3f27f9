// Package game implements the three round variants a session plays:
// TargetNumber, CodeBreaker and Trivia.
//
// Every variant satisfies the Game interface. A game owns only its own
// secret data and per-player state; the session package owns timing, the
// roster and the score table, and applies the Verdict each call returns.
//
// # Basic Usage
//
//	rng := randutil.New(42)
//	g, err := game.New(game.KindCodeBreaker, rng, game.Options{})
//	if err != nil {
//	    return err
//	}
//	g.StartRound()
//	v := g.Submit("ana", "1234", []string{"ana", "bob"})
//	// v.Reply goes to ana, v.Announce to everyone, v.Awards to the scores
//	if v.Done {
//	    // round decided before its countdown
//	}
//
// # Deterministic Rounds
//
// Games draw targets, tiles, codes and questions from the *rand.Rand they
// are built with, so a fixed seed replays the same session.
package game
