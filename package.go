// Package extract converts free-form LLM chat-completion responses into
// validated, strongly-typed Go values.
//
// The library has three layers:
//
//   - Mode-keyed extraction: a [Mode] identifies which provider response
//     shape produced the raw payload (tool-call array, legacy function
//     call, raw or fenced JSON, provider-native argument maps, YAML).
//     Each mode maps to an extraction strategy that pulls the structured
//     source out of a [Response].
//   - Typed parsing: [Parse] decodes the extracted source into your struct,
//     with a strict mode that rejects structural deviations and validates
//     against the type's compiled JSON Schema, and a lenient mode that
//     tolerates raw control characters in model output.
//   - Asynchronous validation: the validate subpackage walks the parsed
//     object graph, fans out every registered validator concurrently, and
//     returns aggregated failures instead of stopping at the first.
//
// # Quick Start
//
//	type Person struct {
//	    Name string `json:"name" description:"The person's full name"`
//	    Age  int    `json:"age"`
//	}
//
//	// A provider handed you a tool-call response.
//	resp := extract.ToolCallResponse("Person", `{"name": "Ada", "age": 30}`)
//
//	person, err := extract.Parse[Person](resp, extract.ModeToolCall)
//	if err != nil {
//	    // Truncated output, missing/mismatched tool calls, or bad JSON.
//	}
//
//	// Optionally run async validators registered for Person.
//	failures, err := validate.Run(ctx, person, nil)
//
// Schema descriptions for advertising the type to a provider come from the
// schema subpackage:
//
//	fs, _ := schema.Describe(reflect.TypeFor[Person]())
//	// fs.Name == "Person", fs.Parameters is the JSON Schema parameter map.
//
// The library performs no network I/O. Transports hand it responses;
// retry policy on parse or validation failure belongs to the caller.
package extract
