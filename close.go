package ngramfeat

// Close marks the engine closed. Runs already in flight complete; later
// calls return ErrClosed. Close is idempotent.
func (e *Engine) Close() error {
	if e == nil {
		return nil
	}
	if e.closed.Swap(true) {
		return nil
	}
	e.logger.Debug("engine closed")
	return nil
}
