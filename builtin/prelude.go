// Package builtin assembles the default Scrapscript environment: the
// native closures named in spec.md §6 ($$fetch, $$jsondecode,
// $$serialize, $$deserialize, $$listlength, plus $$add) and the
// verbatim prelude source (id, quicksort, filter, concat, map, range,
// foldr, take, all, any), parsed and evaluated once to seed it.
//
// Grounded on the teacher's std/builtins.go (Runtime/CallbackFunc/
// Builtin registration shape, go-mix's global Builtins table),
// generalized from an io.Writer-threading callback table into
// ast.NativeFunction values keyed by name, since Scrapscript builtins
// are ordinary environment bindings rather than a separate dispatch
// table. Exact behavior and the prelude text itself are supplemented
// from original_source/scrapscript.py's STDLIB/PRELUDE/boot_env
// (spec.md §12).
package builtin

// Prelude is the verbatim prelude source (SPEC_FULL §12), parsed and
// evaluated once against Stdlib to seed the default environment.
const Prelude = `
id = x -> x

. quicksort =
  | [] -> []
  | [p, ...xs] -> (concat ((quicksort (ltp xs p)) +< p) (quicksort (gtp xs p))
    . gtp = xs -> p -> filter (x -> x >= p) xs
    . ltp = xs -> p -> filter (x -> x < p) xs)

. filter = f ->
  | [] -> []
  | [x, ...xs] -> f x |> | #true () -> x >+ filter f xs
                         | #false () -> filter f xs

. concat = xs ->
  | [] -> xs
  | [y, ...ys] -> concat (xs +< y) ys

. map = f ->
  | [] -> []
  | [x, ...xs] -> f x >+ map f xs

. range =
  | 0 -> []
  | i -> range (i - 1) +< (i - 1)

. foldr = f -> a ->
  | [] -> a
  | [x, ...xs] -> f x (foldr f a xs)

. take =
  | 0 -> xs -> []
  | n ->
    | [] -> []
    | [x, ...xs] -> x >+ take (n - 1) xs

. all = f ->
  | [] -> #true ()
  | [x, ...xs] -> f x && all f xs

. any = f ->
  | [] -> #false ()
  | [x, ...xs] -> f x || any f xs
`
