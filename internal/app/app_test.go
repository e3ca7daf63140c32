package app

import (
	"testing"

	"cafeteria-system/internal/common/config"
)

func TestRabbitConfigCarriesTLS(t *testing.T) {
	rc := RabbitConfig(config.MQ{Host: "mq", Port: 5671, User: "u", Pass: "p", VHost: "/", TLS: true})
	if !rc.UseTLS || rc.Host != "mq" || rc.Port != 5671 || rc.Password != "p" {
		t.Fatalf("config = %+v", rc)
	}
	if RabbitConfig(config.MQ{Host: "mq"}).UseTLS {
		t.Fatal("tls should be off unless configured")
	}
}
