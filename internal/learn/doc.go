// Package learn holds the numeric pieces of the topic classifier: a
// unigram and bigram TF-IDF text vectoriser, a ridge regression fitted in
// dual form with exact leave-one-out predictions, cosine similarity and
// nearest neighbours over sparse vectors.
package learn
