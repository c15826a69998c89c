package hasura

// GraphQL query for the infinite-scroll browser: partial, case-insensitive
// category match with an offset window.
const SearchGifsQuery = `
query SearchGifs($category: String!, $limit: Int!, $offset: Int!) {
  gifs(where: { category: { _ilike: $category } }, limit: $limit, offset: $offset) {
    url
    category
  }
}
`

// GraphQL query for the odd-one-out game: a fixed-size sample of one
// category, no offset.
const SampleGifsQuery = `
query SampleGifs($category: String!, $limit: Int!) {
  gifs(where: { category: { _ilike: $category } }, limit: $limit) {
    url
    category
  }
}
`

// GraphQL query for listing users
const UsersQuery = `
query Users {
  users {
    id
    name
    email
    mobile
  }
}
`

// GraphQL query for a single user by primary key
const UserByPKQuery = `
query UserByPK($id: Int!) {
  users_by_pk(id: $id) {
    id
    name
    email
    mobile
  }
}
`

// GraphQL mutation for inserting a user
const InsertUserMutation = `
mutation InsertUser($name: String!, $email: String!, $mobile: Int) {
  insert_users_one(object: { name: $name, email: $email, mobile: $mobile }) {
    id
    name
    email
    mobile
  }
}
`
