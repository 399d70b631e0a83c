package models

// ModelTypeRegistry lists every stored record, in dependency order.
var ModelTypeRegistry = []interface{}{
	&User{},
	&Freet{},
	&Rating{},
	&Table{},
	&Vote{},
}
