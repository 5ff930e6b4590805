package ros2client

// SampleHandler is called for each sample delivered by a Subscription
// that was created with a callback (as opposed to being pulled via
// Stream).
type SampleHandler[T Message] func(T, SampleInfo)

// HandlerInterceptor wraps a SampleHandler, letting cross-cutting
// concerns (logging, metrics, tracing) apply to every delivered
// sample without the subscription itself knowing about them.
//
// Example (logging):
//
//	func LoggingInterceptor[T ros2client.Message](next ros2client.SampleHandler[T]) ros2client.SampleHandler[T] {
//	    return func(v T, info ros2client.SampleInfo) {
//	        log.Printf("sample from %s", info.WriterGUID)
//	        next(v, info)
//	    }
//	}
type HandlerInterceptor[T Message] func(SampleHandler[T]) SampleHandler[T]

// applyHandlerInterceptors wraps handler with interceptors, outermost
// first, so interceptors[0] sees the sample before interceptors[1].
func applyHandlerInterceptors[T Message](handler SampleHandler[T], interceptors []HandlerInterceptor[T]) SampleHandler[T] {
	for i := len(interceptors) - 1; i >= 0; i-- {
		handler = interceptors[i](handler)
	}
	return handler
}

// PublishFunc matches the signature of Publisher[T].Publish.
type PublishFunc[T Message] func(T) Token

// PublishInterceptor wraps a PublishFunc, letting cross-cutting
// concerns apply to every outgoing sample.
type PublishInterceptor[T Message] func(PublishFunc[T]) PublishFunc[T]

func applyPublishInterceptors[T Message](publish PublishFunc[T], interceptors []PublishInterceptor[T]) PublishFunc[T] {
	for i := len(interceptors) - 1; i >= 0; i-- {
		publish = interceptors[i](publish)
	}
	return publish
}
