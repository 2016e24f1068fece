// Package model defines the data structures used throughout VetLink.
//
// These types describe what the clinic API exchanges and what the terminal
// client keeps in memory. They carry the wire field names of the API
// (`nombre`, `especie`, ...) in their JSON tags.
//
// # Pet
//
// The [Pet] struct is one record returned by the listing endpoint:
//
//	type Pet struct {
//	    ID        int64    // Server-side identity
//	    Name      string   // nombre
//	    Species   string   // especie
//	    Breed     string   // raza
//	    Sex       string   // sexo
//	    BirthDate string   // fecha_nacimiento, ISO date
//	    Owner     OwnerRef // usuario_cliente
//	}
//
// # Query
//
// The [Query] struct drives a listing request. Display columns ([Column]) are
// decoupled from the field names the backend sorts and filters on; the
// mapping lives in a single table consulted by [Column.Field].
//
// # PageResult
//
// The [PageResult] struct holds one page of records plus the total number of
// matching records reported by the server.
package model
