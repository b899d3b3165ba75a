package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type recordingHandler struct {
	times []VTimeInSec
}

func (h *recordingHandler) Handle(e Event) error {
	h.times = append(h.times, e.Time())
	return nil
}

var _ = Describe("SerialEngine", func() {
	var (
		engine  *SerialEngine
		handler *recordingHandler
	)

	BeforeEach(func() {
		engine = NewSerialEngine()
		handler = &recordingHandler{}
	})

	It("should run events in time order", func() {
		engine.Schedule(NewEventBase(3.0, handler))
		engine.Schedule(NewEventBase(1.0, handler))
		engine.Schedule(NewEventBase(2.0, handler))

		err := engine.Run()

		Expect(err).To(BeNil())
		Expect(handler.times).To(Equal(
			[]VTimeInSec{1.0, 2.0, 3.0}))
		Expect(engine.CurrentTime()).To(Equal(VTimeInSec(3.0)))
	})

	It("should panic when scheduling an event in the past", func() {
		engine.writeNow(5.0)

		Expect(func() {
			engine.Schedule(NewEventBase(1.0, handler))
		}).To(Panic())
	})
})
