// Package session keeps the set of live game sessions.
//
// Each session pairs an engine with the game loop goroutine that owns it.
// Sessions are addressed by short IDs (four hex characters when generated)
// and looked up case-insensitively. Removing a session, directly or through
// CleanupExpiredSessions, stops its loop.
//
// Collaborators such as renderers and the high score store are attached per
// session through a SetupFunc:
//
//	manager := session.NewManagerWithSetup(func(id string) ([]engine.Option, []loop.Option) {
//		return []engine.Option{engine.WithHighScoreStore(store)},
//			[]loop.Option{loop.WithOnTick(func(s *engine.GameState) { hub.Broadcast(id, s) })}
//	})
//	defer manager.Close()
//
//	sess, err := manager.Create("", "classic", cfg)
package session
