package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/plugspec/pkg/parser"
	"github.com/gnana997/plugspec/pkg/util"
)

func parseTS(t *testing.T, source string) *File {
	t.Helper()
	pm := parser.NewParserManager(util.DiscardLogger())
	t.Cleanup(func() { pm.Close() })

	f, err := Parse(pm, "index.ts", []byte(source))
	require.NoError(t, err)
	t.Cleanup(f.Close)
	return f
}

// initializer returns the value of the first `const name = ...` in f.
func initializer(t *testing.T, f *File, name string) *Node {
	t.Helper()
	var found *Node
	f.Root().Walk(func(n *Node) bool {
		if found != nil {
			return false
		}
		if n.Type() == "variable_declarator" && n.Field("name").Text() == name {
			found = n.Field("value")
			return false
		}
		return true
	})
	require.NotNil(t, found, "no declarator %q", name)
	return found
}

func TestKind(t *testing.T) {
	f := parseTS(t, `
const s = "x";
const n = 42;
const big = 1026532993923293184n;
const b = false;
const nul = null;
const u = undefined;
const tpl = `+"`a${s}`"+`;
const id = s;
const obj = { a: 1 };
const arr = [1, 2];
const call = f(1);
const prop = Foo.Bar;
const elem = foo["bar"];
const bin = 1 << 2;
const un = -1;
const arrow = () => 1;
const fn = function () { return 1; };
const paren = (1);
const asConst = { a: 1 } as const;
const sat = { a: 1 } satisfies Record<string, number>;
const nonNull = maybe!;
`)

	cases := map[string]Kind{
		"s":       KindString,
		"n":       KindNumber,
		"big":     KindBigInt,
		"b":       KindBoolean,
		"nul":     KindNull,
		"u":       KindUndefined,
		"tpl":     KindTemplate,
		"id":      KindIdentifier,
		"obj":     KindObject,
		"arr":     KindArray,
		"call":    KindCall,
		"prop":    KindPropertyAccess,
		"elem":    KindElementAccess,
		"bin":     KindBinary,
		"un":      KindUnary,
		"arrow":   KindArrowFunction,
		"fn":      KindFunction,
		"paren":   KindWrapper,
		"asConst": KindWrapper,
		"sat":     KindWrapper,
		"nonNull": KindWrapper,
	}
	for name, want := range cases {
		assert.Equal(t, want, initializer(t, f, name).Kind(), name)
	}

	var nilNode *Node
	assert.Equal(t, KindUnknown, nilNode.Kind())
	assert.Equal(t, "property_access", KindPropertyAccess.String())
	assert.Equal(t, "unknown", Kind(99).String())
}

func TestUnwrap(t *testing.T) {
	f := parseTS(t, `
const nested = ((({ a: 1 } as const) satisfies object) as unknown as Settings);
const plain = 5;
const asserted = <string>value;
`)

	nested := initializer(t, f, "nested")
	inner := Unwrap(nested)
	assert.Equal(t, KindObject, inner.Kind())

	assert.Equal(t, KindIdentifier, Unwrap(initializer(t, f, "asserted")).Kind())
	assert.Equal(t, "value", Unwrap(initializer(t, f, "asserted")).Text())

	plain := initializer(t, f, "plain")
	assert.True(t, Same(plain, Unwrap(plain)), "non-wrappers are returned unchanged")
	assert.Nil(t, Unwrap(nil))

	assert.Len(t, WrapperTypes(nested), 3, "as const contributes no type")
}

func TestUnwrap_Idempotent(t *testing.T) {
	f := parseTS(t, `
const a = (((x)));
const b = y as unknown as Z;
const c = { k: (1 as number)! };
const d = [1, 2] satisfies number[];
`)

	f.Root().Walk(func(n *Node) bool {
		once := Unwrap(n)
		twice := Unwrap(once)
		assert.True(t, Same(once, twice), "unwrap not idempotent at %s", n.Location())
		assert.NotEqual(t, KindWrapper, once.Kind())
		return true
	})
}

func TestMembers(t *testing.T) {
	f := parseTS(t, `
const obj = {
    plain: 1,
    "quoted-key": 2,
    ["computed"]: 3,
    [dynamic]: 4,
    shorthand,
    ...spread,
    // comment
    get lazy() { return 5; },
    method() { return 6; },
    plain: 7,
};
`)

	members := initializer(t, f, "obj").Members()
	require.Len(t, members, 9)

	assert.Equal(t, MemberProperty, members[0].Kind)
	assert.Equal(t, "plain", members[0].Name)
	assert.Equal(t, "quoted-key", members[1].Name)
	assert.Equal(t, "computed", members[2].Name)
	assert.True(t, members[2].Computed)
	assert.Empty(t, members[3].Name)
	assert.True(t, members[3].Computed)
	assert.Equal(t, MemberShorthand, members[4].Kind)
	assert.Equal(t, KindIdentifier, members[4].Value.Kind())
	assert.Equal(t, MemberSpread, members[5].Kind)
	assert.Equal(t, "spread", members[5].Value.Text())
	assert.Equal(t, MemberGetter, members[6].Kind)
	assert.Equal(t, "lazy", members[6].Name)
	assert.Equal(t, MemberMethod, members[7].Kind)

	obj := initializer(t, f, "obj")
	plain := obj.PropertyValue("plain")
	require.NotNil(t, plain)
	assert.Equal(t, "7", plain.Text(), "later keys win")
	assert.True(t, obj.HasProperty("lazy"))
	assert.Nil(t, obj.PropertyValue("lazy"), "getters have no value expression")
	assert.False(t, obj.HasProperty("missing"))
}

func TestLiterals(t *testing.T) {
	f := parseTS(t, `
const s1 = 'it\'s';
const s2 = "tab\thereA\u{1F600}\x41";
const tpl = `+"`plain`"+`;
const tplSub = `+"`a${b}c${d}`"+`;
const hex = 0xFF;
const sep = 1_000;
const flt = 0.5;
const exp = 1e3;
const big = 1026532993923293184n;
const bigHex = 0xFFn;
`)

	s, ok := initializer(t, f, "s1").StringValue()
	require.True(t, ok)
	assert.Equal(t, "it's", s)

	s, ok = initializer(t, f, "s2").StringValue()
	require.True(t, ok)
	assert.Equal(t, "tab\thereA\U0001F600A", s)

	text, subs := initializer(t, f, "tpl").TemplateValue()
	assert.Equal(t, "plain", text)
	assert.Zero(t, subs)
	_, subs = initializer(t, f, "tplSub").TemplateValue()
	assert.Equal(t, 2, subs)

	v, integer, ok := initializer(t, f, "hex").NumberValue()
	require.True(t, ok)
	assert.Equal(t, 255.0, v)
	assert.True(t, integer)

	v, integer, ok = initializer(t, f, "sep").NumberValue()
	require.True(t, ok)
	assert.Equal(t, 1000.0, v)
	assert.True(t, integer)

	v, integer, ok = initializer(t, f, "flt").NumberValue()
	require.True(t, ok)
	assert.Equal(t, 0.5, v)
	assert.False(t, integer)

	_, integer, _ = initializer(t, f, "exp").NumberValue()
	assert.False(t, integer)

	big, ok := initializer(t, f, "big").BigIntValue()
	require.True(t, ok)
	assert.Equal(t, "1026532993923293184", big)

	big, ok = initializer(t, f, "bigHex").BigIntValue()
	require.True(t, ok)
	assert.Equal(t, "255", big)
}

func TestCallsAndAccess(t *testing.T) {
	f := parseTS(t, `
const keys = Object.keys(Modes).map((k, i) => ({ label: k, value: Modes[k] }));
const from = Array.from(items);
const flag = 1 << 3;
const neg = -2;
`)

	keys := initializer(t, f, "keys")
	receiver, method, ok := keys.MethodCall()
	require.True(t, ok)
	assert.Equal(t, "map", method)
	assert.True(t, receiver.IsCallTo("Object.keys"))
	assert.Equal(t, "Modes", receiver.Argument(0).Text())

	callback := keys.Argument(0)
	require.Equal(t, KindArrowFunction, callback.Kind())
	assert.Equal(t, []string{"k", "i"}, callback.ParamNames())

	body := callback.ReturnedExpression()
	require.Equal(t, KindObject, body.Kind())
	value := body.PropertyValue("value")
	assert.Equal(t, KindElementAccess, value.Kind())
	assert.Equal(t, "Modes", value.Object().Text())
	assert.Equal(t, "k", value.Index().Text())

	name, ok := initializer(t, f, "from").CalleeName()
	require.True(t, ok)
	assert.Equal(t, "Array.from", name)

	flag := initializer(t, f, "flag")
	assert.Equal(t, "<<", flag.Operator())
	assert.Equal(t, "1", flag.Left().Text())
	assert.Equal(t, "3", flag.Right().Text())

	neg := initializer(t, f, "neg")
	assert.Equal(t, "-", neg.Operator())
	assert.Equal(t, "2", neg.Operand().Text())
}

func TestFunctionBodies(t *testing.T) {
	f := parseTS(t, `
const single = x => x;
const block = (a: string, b = 2) => { const y = 1; return [a]; };
const fn = function (v) { return { v }; };
const empty = () => {};
`)

	single := initializer(t, f, "single")
	assert.Equal(t, []string{"x"}, single.ParamNames())
	assert.Equal(t, "x", single.ReturnedExpression().Text())

	block := initializer(t, f, "block")
	assert.Equal(t, []string{"a", "b"}, block.ParamNames())
	assert.Equal(t, KindArray, block.ReturnedExpression().Kind())

	assert.Equal(t, KindObject, initializer(t, f, "fn").ReturnedExpression().Kind())
	assert.Nil(t, initializer(t, f, "empty").ReturnedExpression())
}

func TestIsStringArrayType(t *testing.T) {
	f := parseTS(t, `
const a: string[] = [];
const b: Array<string> = [];
const c: readonly string[] = [];
const d: number[] = [];
const e: Array<number> = [];
const g: string = "";
`)

	want := map[string]bool{"a": true, "b": true, "c": true, "d": false, "e": false, "g": false}
	f.Root().Walk(func(n *Node) bool {
		if n.Type() != "variable_declarator" {
			return true
		}
		name := n.Field("name").Text()
		assert.Equal(t, want[name], IsStringArrayType(n.Field("type")), name)
		return false
	})

	assert.False(t, IsStringArrayType(nil))
}

func TestParseNumber(t *testing.T) {
	v, integer, ok := ParseNumber("0b101")
	require.True(t, ok)
	assert.Equal(t, 5.0, v)
	assert.True(t, integer)

	v, _, ok = ParseNumber("0o17")
	require.True(t, ok)
	assert.Equal(t, 15.0, v)

	_, _, ok = ParseNumber("abc")
	assert.False(t, ok)

	s, ok := ParseBigInt("123_456n")
	require.True(t, ok)
	assert.Equal(t, "123456", s)
}

func TestParse_SyntaxErrorsKeepTree(t *testing.T) {
	f := parseTS(t, `const settings = { a: { type: 1 }, b: ;`)
	assert.True(t, f.HasErrors())
	assert.NotNil(t, f.Root())
	assert.Equal(t, "index.ts", f.Path)
	assert.Equal(t, parser.LanguageTypeScript, f.Language)
}

func TestTemplateParts(t *testing.T) {
	f := parseTS(t, "const url = `https://${HOST}/themes/${name}.json`;\nconst plain = `a\\tb`;")

	segments, exprs := initializer(t, f, "url").TemplateParts()
	assert.Equal(t, []string{"https://", "/themes/", ".json"}, segments)
	require.Len(t, exprs, 2)
	assert.Equal(t, "HOST", exprs[0].Text())
	assert.Equal(t, "name", exprs[1].Text())

	segments, exprs = initializer(t, f, "plain").TemplateParts()
	assert.Equal(t, []string{"a\tb"}, segments)
	assert.Empty(t, exprs)
}
