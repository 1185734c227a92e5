// Package queue provides durable, named job queues with delayed execution,
// per-job retry backoff and a pull-based worker execution engine.
//
// An Enqueuer records intent: it serializes a typed payload into a Job and
// stores it through an EnqueuerRepository. A Worker polls one or more queues
// through a WorkerRepository, claims eligible jobs in delay-then-FIFO order
// and dispatches each to the Handler registered for the job's payload type.
// A failing handler consumes one attempt; the job is rescheduled per its
// backoff policy until attempts are exhausted, at which point it is marked
// terminally failed and archived to the dead letter store.
//
// The engine is domain-agnostic: handlers own every entity-status write,
// including on the terminal-failure path. Coordination between concurrent
// handlers happens through the persisted entities (check-then-act), never
// through shared memory.
//
// Three storage implementations are provided: MemoryStorage for tests and
// local development, RedisStorage and PGStorage for production.
//
// Example:
//
//	storage := queue.NewMemoryStorage()
//	defer storage.Close()
//
//	enq, _ := queue.NewEnqueuer(storage)
//	jobID, _ := enq.Enqueue(ctx, PublishPayload{PostID: id},
//		queue.WithQueue(queue.QueueSocialPublish),
//		queue.WithMaxAttempts(3),
//		queue.WithBackoff(queue.Policy{Kind: queue.BackoffExponential, Delay: 30 * time.Second}),
//	)
//
//	w, _ := queue.NewWorker(storage, queue.WithQueues(queue.QueueSocialPublish))
//	_ = w.RegisterHandler(queue.NewJobHandler(handlePublish))
//	_ = w.Start(ctx)
package queue
