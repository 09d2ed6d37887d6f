// Package live manages the bidirectional streaming connection to the
// conversational AI endpoint.
//
// A Session owns one websocket Channel. Outbound, it taps the guest's
// microphone into fixed 2048-sample windows, encodes each window as
// 16 kHz PCM, and fires it at the channel without waiting for
// acknowledgement; it also forwards periodic camera frames. Inbound,
// it decodes 24 kHz synthesized audio into playable buffers and hands
// them to a Scheduler that plays them back to back, and surfaces
// transcription fragments and turn control as events.
//
// The scheduler keeps a running clock of where the next buffer should
// start. An interrupted signal from the endpoint flushes everything:
// every active source stops, the active set clears, and the clock
// resets so the next reply plays immediately.
//
// Typical use:
//
//	sess := live.NewSession(cfg, ch, sink)
//	if err := sess.Start(ctx); err != nil { ... }
//	defer sess.Close()
//
//	for ev := range sess.Events() {
//		switch e := ev.(type) {
//		case *live.TranscriptEvent:
//			...
//		}
//	}
package live
