package eventpubsub

import (
	"github.com/asaskevich/EventBus"
	log "github.com/sirupsen/logrus"
)

var bus EventBus.Bus

func Init() {
	bus = EventBus.New()
}

func Publish(publisherName string, topic string, event interface{}) {
	log.Debugf("[%v] Published to topic %s", publisherName, topic)
	bus.Publish(topic, event)
}

func PublishError(publisherName string, err error) {
	log.Error(err)
	bus.Publish(Error, err)
}

func Subscribe(subscriberName string, topic string, callbackFn interface{}) {
	if err := bus.SubscribeAsync(topic, callbackFn, false); err != nil {
		log.Errorf("[%v] error: %v", subscriberName, err)
		return
	}

	log.Infof("[%v] Subscribed to topic %s", subscriberName, topic)
}
