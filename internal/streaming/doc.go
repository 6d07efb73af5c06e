/*
Package streaming writes image response bodies in chunks with a per-chunk
write deadline.

A slow client on a large download would otherwise hold a connection until
the server-wide WriteTimeout. Each chunk extends the deadline through
http.ResponseController, so the transfer is bounded by how long any one
chunk takes rather than by total size.

	if err := streaming.WriteBody(r.Context(), w, data, streaming.DefaultConfig()); err != nil {
		if !errors.Is(err, streaming.ErrClientGone) {
			logging.Warn("Image write failed: %v", err)
		}
	}

Disconnects surface as ErrClientGone and stalled chunks as ErrWriteTimeout.
*/
package streaming
