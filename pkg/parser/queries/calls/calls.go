package calls

// Queries captures calls whose first argument is an object literal. Callers
// keep the matches whose callee is one of the plugin definition helpers
// (definePluginSettings, definePlugin).
//
// Captures:
//   - @call.callee - the called identifier
//   - @call.argument - the object literal argument
//   - @call.definition - the whole call, for location
const Queries = `
(call_expression
  function: (identifier) @call.callee
  arguments: (arguments . (object) @call.argument)
) @call.definition
`
