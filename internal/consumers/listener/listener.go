package listener

type ProductEventConsumer interface {
	Init()
	Consume()
}
