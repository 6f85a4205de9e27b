// Package resilience groups the fault tolerance used around the two external
// collaborators of a summarization run: the model service and the record store.
//
// Subpackages:
//   - circuitbreaker: gobreaker-based breakers for completion providers and the database
//   - retry: exponential backoff with jitter and transient error classification
//
// Usage example:
//
//	cb := circuitbreaker.New(circuitbreaker.CompletionConfig("openai"))
//	err := retry.WithBackoff(ctx, retry.AIAPIConfig(), func() error {
//	    text, err := circuitbreaker.Run(cb, func() (string, error) {
//	        return client.Complete(ctx, req)
//	    })
//	    summary = text
//	    return err
//	})
package resilience
