package validation

var ParticipantStatuses = []string{"confirmed", "pending", "declined"}

var CategorySchema = Schema{
	{Field: "name", Kind: String, Required: true, Min: 5, Max: 255},
}

var LocationSchema = Schema{
	{Field: "name", Kind: String, Required: true, Min: 5, Max: 255},
	{Field: "address", Kind: String, Required: true, Min: 5, Max: 1024},
}

var EventSchema = Schema{
	{Field: "title", Kind: String, Required: true, Min: 5, Max: 255},
	{Field: "description", Kind: String, Required: true, Min: 5, Max: 1024},
	{Field: "date", Kind: Date, Required: true},
	{Field: "location", Kind: HexID, Required: true},
	{Field: "category", Kind: HexID, Required: true},
	{Field: "participants", Kind: HexID, List: true},
}

// status may be omitted; the stored default is "pending".
var ParticipantSchema = Schema{
	{Field: "user", Kind: ObjectID, Required: true},
	{Field: "event", Kind: ObjectID, Required: true},
	{Field: "status", Kind: String, OneOf: ParticipantStatuses},
}

var UserSchema = Schema{
	{Field: "name", Kind: String, Required: true},
	{Field: "email", Kind: Email, Required: true},
	{Field: "password", Kind: String, Required: true},
	{Field: "isAdmin", Kind: Bool},
}

var AuthSchema = Schema{
	{Field: "email", Kind: Email, Required: true, Min: 5, Max: 255},
	{Field: "password", Kind: String, Required: true, Min: 5, Max: 1024},
}
