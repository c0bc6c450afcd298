package models

// All returns every persisted model in migration order
func All() []interface{} {
	return []interface{}{
		&Client{},
		&Employee{},
		&Vehicle{},
		&Service{},
		&Order{},
		&Part{},
		&HandoverProtocol{},
		&ProtocolPhoto{},
	}
}
