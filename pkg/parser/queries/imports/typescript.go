package imports

// Queries captures the module specifier of every statement that pulls in
// another source file. It is compiled against the TypeScript, TSX and
// JavaScript grammars alike.
//
// Captures:
//   - @module.source - the specifier text, without quotes
//   - @module.callee - the callee of a call with a string argument; only
//     matches whose callee is `require` are dependencies
const Queries = `
; import { a } from './a';  import * as b from './b';  import './side-effect';
(import_statement
  source: (string (string_fragment) @module.source)
)

; export { a } from './a';  export * from './b';
(export_statement
  source: (string (string_fragment) @module.source)
)

; const a = require('./a');
(call_expression
  function: (identifier) @module.callee
  arguments: (arguments . (string (string_fragment) @module.source))
)
`
