/*
Package classifier implements the statistical half of the Mind interpreter:
a tokenizer, a sparse feature extractor, a pre-trained multinomial token
classifier with BIO slot decoding, and a tf-idf utterance router.

Model weights are external, versioned JSON artifacts consumed read-only.
They are loaded once at process start (embedded defaults or explicit paths)
and never mutated, so classification needs no locking and is safe for
concurrent use.
*/
package classifier
